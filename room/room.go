package room

type Room struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Capacity   int      `json:"capacity"`
	Location   string   `json:"location"`
	Floor      int      `json:"floor"`
	RoomNumber string   `json:"roomNumber"`
	Active     bool     `json:"active"`
	Amenities  []string `json:"amenities"`
}
