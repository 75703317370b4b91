package domain

import (
	"strings"
	"time"
)

const (
	PurposeSale   = "sale"
	PurposeRental = "rental"
)

// Канонические подкатегории. Закрытое перечисление из трех значений.
const (
	SubcategoryHouse = "house"
	SubcategoryFlat  = "flat"
	SubcategoryOther = "other"
)

// Address - блок адреса объекта
type Address struct {
	Postcode      string
	Locality      string
	SuburbOrTown  string
	FullAddress   string
	HiddenAddress string
	Latitude      *float64
	Longitude     *float64
}

// Prices хранит все известные представления цены в том виде, в каком они лежат в документе.
// Значения могут быть числами, числовыми строками или отсутствовать.
type Prices struct {
	SaleGBP          interface{}
	SortGBP          interface{}
	RentPCMGBP       interface{}
	RentAmountGBP    interface{}
	MatchSale        interface{} // legacy поле из CRM
	ListingMatchSale interface{} // listing.price_match_sale
	MatchRentMonthly interface{} // price_match_rent_pa_inc_tax_month
	Match            interface{}
	StateValue       interface{}
	Display          string
}

type Size struct {
	SQM     *float64
	SQFT    *float64
	Display string
}

type Agent struct {
	ID              string
	Name            string
	Email           string
	PhoneMobile     string
	PhoneDirect     string
	Position        string
	ProfileImageURL string
}

type Advert struct {
	Heading string
	Body    string
}

// Listing - документ коллекции объектов. Для движка только для чтения.
type Listing struct {
	ID      string
	Purpose string
	Status  string

	DisplayAddress string
	Address        Address
	LocationTerms  []string
	Tags           []string

	Prices Prices
	Size   Size

	// Спальни/ванные могут лежать в attributes, attributes_full или на верхнем уровне,
	// как числом, так и строкой. Читать только через Bedrooms()/Bathrooms().
	Attributes     map[string]interface{}
	AttributesFull map[string]interface{}
	Beds           interface{}
	Baths          interface{}

	SubcategoryCanonical string
	Subcategories        []string
	Features             []string
	Highlights           []string
	Advert               Advert
	Agents               []Agent

	MainImageURL  string
	EbrochureLink string

	UpdatedAt *time.Time
}

// Bedrooms возвращает количество спален из первого места хранения, где оно распознается.
func (l *Listing) Bedrooms() (int, bool) {
	return l.roomCount("bedrooms", l.Beds)
}

// Bathrooms - то же для ванных.
func (l *Listing) Bathrooms() (int, bool) {
	return l.roomCount("bathrooms", l.Baths)
}

func (l *Listing) roomCount(key string, topLevel interface{}) (int, bool) {
	for _, attrs := range []map[string]interface{}{l.Attributes, l.AttributesFull} {
		if attrs == nil {
			continue
		}
		if v, ok := LooseInt(attrs[key]); ok {
			return v, true
		}
	}
	return LooseInt(topLevel)
}

// NumericPrice выбирает первую ненулевую числовую цену в порядке, зависящем от назначения.
// Если числовых полей нет, пытается вытащить цену из текстового представления.
func (l *Listing) NumericPrice(purpose string) (int, bool) {
	p := l.Prices
	var candidates []interface{}
	if purpose == PurposeRental {
		candidates = []interface{}{p.RentPCMGBP, p.RentAmountGBP, p.MatchRentMonthly, p.Match, p.StateValue}
	} else {
		candidates = []interface{}{p.SaleGBP, p.SortGBP, p.MatchSale, p.ListingMatchSale, p.Match, p.StateValue}
	}

	for _, c := range candidates {
		if v, ok := LooseInt(c); ok && v != 0 {
			return v, true
		}
	}

	if v, ok := PriceFromDisplay(p.Display); ok {
		return v, true
	}
	return PriceFromDisplay(l.Advert.Heading)
}

// HasFeature ищет подстроку в features, highlights и маркетинговом тексте.
func (l *Listing) HasFeature(feature string) bool {
	feature = strings.ToLower(feature)
	if feature == "" {
		return false
	}
	for _, f := range l.Features {
		if strings.Contains(strings.ToLower(f), feature) {
			return true
		}
	}
	for _, h := range l.Highlights {
		if strings.Contains(strings.ToLower(h), feature) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(l.MarketingText()), feature)
}

// MarketingText склеивает адрес и рекламный текст объявления.
func (l *Listing) MarketingText() string {
	return strings.Join([]string{l.DisplayAddress, l.Advert.Heading, l.Advert.Body}, " ")
}

// CanonicalSubcategory берет subcategory_canonical, а если его нет -
// первый элемент subcategories, который удается разрешить через resolve.
func (l *Listing) CanonicalSubcategory(resolve func(string) (string, bool)) (string, bool) {
	if l.SubcategoryCanonical != "" {
		return l.SubcategoryCanonical, true
	}
	if resolve == nil {
		return "", false
	}
	for _, s := range l.Subcategories {
		if canon, ok := resolve(s); ok {
			return canon, true
		}
	}
	return "", false
}
