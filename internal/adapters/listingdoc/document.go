package listingdoc

// Document - документ коллекции объектов в том виде, в каком его пишет ингест.
// Одна и та же структура читается из MongoDB (bson) и из колонки JSONB в PostgreSQL (json).
// Поля с непостоянным типом объявлены как interface{} и разбираются в маппере.
type Document struct {
	MongoID interface{} `bson:"_id,omitempty" json:"_id,omitempty"`
	ID      interface{} `bson:"id,omitempty" json:"id,omitempty"`

	Purpose string `bson:"purpose,omitempty" json:"purpose,omitempty"`
	Status  string `bson:"status,omitempty" json:"status,omitempty"`

	DisplayAddress string      `bson:"display_address,omitempty" json:"display_address,omitempty"`
	Address        AddressDoc  `bson:"address,omitempty" json:"address,omitempty"`
	LocationTerms  interface{} `bson:"location_terms,omitempty" json:"location_terms,omitempty"`
	Tags           interface{} `bson:"tags,omitempty" json:"tags,omitempty"`
	Listing        *LegacyDoc  `bson:"listing,omitempty" json:"listing,omitempty"`
	UpdatedAt      interface{} `bson:"updated_at,omitempty" json:"updated_at,omitempty"`

	PriceSaleGBP          interface{} `bson:"price_sale_gbp,omitempty" json:"price_sale_gbp,omitempty"`
	PriceSortGBP          interface{} `bson:"price_sort_gbp,omitempty" json:"price_sort_gbp,omitempty"`
	PriceRentPCMGBP       interface{} `bson:"price_rent_pcm_gbp,omitempty" json:"price_rent_pcm_gbp,omitempty"`
	PriceRentAmountGBP    interface{} `bson:"price_rent_amount_gbp,omitempty" json:"price_rent_amount_gbp,omitempty"`
	PriceMatchSale        interface{} `bson:"price_match_sale,omitempty" json:"price_match_sale,omitempty"`
	PriceMatchRentMonthly interface{} `bson:"price_match_rent_pa_inc_tax_month,omitempty" json:"price_match_rent_pa_inc_tax_month,omitempty"`
	PriceMatch            interface{} `bson:"price_match,omitempty" json:"price_match,omitempty"`
	StateValuePrice       interface{} `bson:"state_value_price,omitempty" json:"state_value_price,omitempty"`
	PriceDisplay          interface{} `bson:"price_display,omitempty" json:"price_display,omitempty"`

	SizeSQM     interface{} `bson:"size_sqm,omitempty" json:"size_sqm,omitempty"`
	SizeSQFT    interface{} `bson:"size_sqft,omitempty" json:"size_sqft,omitempty"`
	SizeDisplay interface{} `bson:"size_display,omitempty" json:"size_display,omitempty"`
	Size        interface{} `bson:"size,omitempty" json:"size,omitempty"`

	Attributes     map[string]interface{} `bson:"attributes,omitempty" json:"attributes,omitempty"`
	AttributesFull map[string]interface{} `bson:"attributes_full,omitempty" json:"attributes_full,omitempty"`
	Beds           interface{}            `bson:"beds,omitempty" json:"beds,omitempty"`
	Baths          interface{}            `bson:"baths,omitempty" json:"baths,omitempty"`

	SubcategoryCanonical string         `bson:"subcategory_canonical,omitempty" json:"subcategory_canonical,omitempty"`
	Subcategories        interface{}    `bson:"subcategories,omitempty" json:"subcategories,omitempty"`
	Features             interface{}    `bson:"features,omitempty" json:"features,omitempty"`
	Highlights           []HighlightDoc `bson:"highlights,omitempty" json:"highlights,omitempty"`
	AdvertInternet       AdvertDoc      `bson:"advert_internet,omitempty" json:"advert_internet,omitempty"`
	Agents               []AgentDoc     `bson:"agents,omitempty" json:"agents,omitempty"`

	MainImageURL  string `bson:"main_image_url,omitempty" json:"main_image_url,omitempty"`
	MainImage     string `bson:"main_image,omitempty" json:"main_image,omitempty"`
	EbrochureLink string `bson:"ebrochure_link,omitempty" json:"ebrochure_link,omitempty"`

	// TextScore заполняется MongoDB через проекцию {$meta: "textScore"}
	TextScore float64 `bson:"score,omitempty" json:"-"`
}

type AddressDoc struct {
	Postcode     string      `bson:"postcode,omitempty" json:"postcode,omitempty"`
	Locality     string      `bson:"locality,omitempty" json:"locality,omitempty"`
	SuburbOrTown string      `bson:"suburb_or_town,omitempty" json:"suburb_or_town,omitempty"`
	Lat          interface{} `bson:"lat,omitempty" json:"lat,omitempty"`
	Latitude     interface{} `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Lon          interface{} `bson:"lon,omitempty" json:"lon,omitempty"`
	Longitude    interface{} `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Formats      FormatsDoc  `bson:"formats,omitempty" json:"formats,omitempty"`
}

type FormatsDoc struct {
	FullAddress   string `bson:"full_address,omitempty" json:"full_address,omitempty"`
	HiddenAddress string `bson:"hidden_address,omitempty" json:"hidden_address,omitempty"`
}

// LegacyDoc - вложенный блок listing из старых выгрузок CRM
type LegacyDoc struct {
	PriceMatchSale interface{} `bson:"price_match_sale,omitempty" json:"price_match_sale,omitempty"`
}

type HighlightDoc struct {
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

type AdvertDoc struct {
	Heading string `bson:"heading,omitempty" json:"heading,omitempty"`
	Body    string `bson:"body,omitempty" json:"body,omitempty"`
}

type AgentDoc struct {
	ID              interface{} `bson:"id,omitempty" json:"id,omitempty"`
	Name            string      `bson:"name,omitempty" json:"name,omitempty"`
	Email           string      `bson:"email,omitempty" json:"email,omitempty"`
	PhoneMobile     string      `bson:"phone_mobile,omitempty" json:"phone_mobile,omitempty"`
	PhoneDirect     string      `bson:"phone_direct,omitempty" json:"phone_direct,omitempty"`
	Position        string      `bson:"position,omitempty" json:"position,omitempty"`
	ProfileImageURL string      `bson:"profile_image_url,omitempty" json:"profile_image_url,omitempty"`
}
