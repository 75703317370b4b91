package domain

// ListingSummary - проекция объекта для клиента (голосовой ассистент, мессенджер)
type ListingSummary struct {
	ListingID    string           `json:"listing_id"`
	Address      string           `json:"address"`
	Size         string           `json:"size,omitempty"`
	Price        string           `json:"price,omitempty"`
	EbrochureURL string           `json:"ebrochure_url"`
	MainImageURL string           `json:"main_image_url"`
	Location     SummaryLocation  `json:"location"`
	Features     []string         `json:"features"`
	Highlights   string           `json:"highlights"`
	Marketing    SummaryMarketing `json:"marketing"`
	Amenities    SummaryAmenities `json:"amenities"`
	Subcategory  string           `json:"subcategory,omitempty"`
	Agent        *SummaryAgent    `json:"agent"`
}

type SummaryLocation struct {
	Postcode     string   `json:"postcode,omitempty"`
	Locality     string   `json:"locality,omitempty"`
	SuburbOrTown string   `json:"suburb_or_town,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Geohash      string   `json:"geohash,omitempty"`
}

type SummaryMarketing struct {
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body,omitempty"`
}

type SummaryAmenities struct {
	Beds  *string `json:"beds"`
	Baths *string `json:"baths"`
}

type SummaryAgent struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	PhoneMobile     string `json:"phone_mobile,omitempty"`
	PhoneDirect     string `json:"phone_direct,omitempty"`
	Position        string `json:"position,omitempty"`
	ProfileImageURL string `json:"profile_image_url"`
}
