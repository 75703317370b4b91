package listingdoc

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"property-search-service/internal/core/domain"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToDomain переводит документ в доменную модель. Разбор не падает:
// нераспознанные значения просто становятся отсутствующими.
func (d *Document) ToDomain() domain.Listing {
	l := domain.Listing{
		ID:             d.identifier(),
		Purpose:        strings.ToLower(strings.TrimSpace(d.Purpose)),
		Status:         strings.ToLower(strings.TrimSpace(d.Status)),
		DisplayAddress: d.DisplayAddress,
		Address: domain.Address{
			Postcode:      d.Address.Postcode,
			Locality:      d.Address.Locality,
			SuburbOrTown:  d.Address.SuburbOrTown,
			FullAddress:   d.Address.Formats.FullAddress,
			HiddenAddress: d.Address.Formats.HiddenAddress,
			Latitude:      firstFloat(d.Address.Lat, d.Address.Latitude),
			Longitude:     firstFloat(d.Address.Lon, d.Address.Longitude),
		},
		LocationTerms: stringList(d.LocationTerms),
		Tags:          stringList(d.Tags),
		Prices: domain.Prices{
			SaleGBP:          d.PriceSaleGBP,
			SortGBP:          d.PriceSortGBP,
			RentPCMGBP:       d.PriceRentPCMGBP,
			RentAmountGBP:    d.PriceRentAmountGBP,
			MatchSale:        d.PriceMatchSale,
			MatchRentMonthly: d.PriceMatchRentMonthly,
			Match:            d.PriceMatch,
			StateValue:       d.StateValuePrice,
			Display:          displayString(d.PriceDisplay),
		},
		Size: domain.Size{
			SQM:     firstFloat(d.SizeSQM),
			SQFT:    firstFloat(d.SizeSQFT),
			Display: displayString(d.SizeDisplay),
		},
		Attributes:           d.Attributes,
		AttributesFull:       d.AttributesFull,
		Beds:                 d.Beds,
		Baths:                d.Baths,
		SubcategoryCanonical: strings.ToLower(strings.TrimSpace(d.SubcategoryCanonical)),
		Subcategories:        stringList(d.Subcategories),
		Features:             stringList(d.Features),
		Advert: domain.Advert{
			Heading: d.AdvertInternet.Heading,
			Body:    d.AdvertInternet.Body,
		},
		MainImageURL:  d.MainImageURL,
		EbrochureLink: d.EbrochureLink,
		UpdatedAt:     parseTime(d.UpdatedAt),
	}

	if d.Listing != nil {
		l.Prices.ListingMatchSale = d.Listing.PriceMatchSale
	}
	if l.Size.Display == "" {
		if s, ok := d.Size.(string); ok {
			l.Size.Display = s
		}
	}
	if l.MainImageURL == "" {
		l.MainImageURL = d.MainImage
	}
	for _, h := range d.Highlights {
		if h.Description != "" {
			l.Highlights = append(l.Highlights, h.Description)
		}
	}
	for _, a := range d.Agents {
		l.Agents = append(l.Agents, domain.Agent{
			ID:              idString(a.ID),
			Name:            a.Name,
			Email:           a.Email,
			PhoneMobile:     a.PhoneMobile,
			PhoneDirect:     a.PhoneDirect,
			Position:        a.Position,
			ProfileImageURL: a.ProfileImageURL,
		})
	}
	return l
}

func (d *Document) identifier() string {
	if id := idString(d.MongoID); id != "" {
		return id
	}
	return idString(d.ID)
}

func idString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case primitive.ObjectID:
		return t.Hex()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// stringList приводит поле-список к []string. Одиночная строка считается списком
// из одного элемента, нестроковые элементы пропускаются.
func stringList(v interface{}) []string {
	var items []interface{}
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{t}
	case []string:
		return t
	case primitive.A:
		items = t
	case []interface{}:
		items = t
	default:
		return nil
	}

	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// displayString - текст для показа; числа выводятся без экспоненты
func displayString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func firstFloat(values ...interface{}) *float64 {
	for _, v := range values {
		var f float64
		switch t := v.(type) {
		case float64:
			f = t
		case float32:
			f = float64(t)
		case int32:
			f = float64(t)
		case int64:
			f = float64(t)
		case int:
			f = float64(t)
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				continue
			}
			f = parsed
		default:
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
			continue
		}
		return &f
	}
	return nil
}

// parseTime понимает даты BSON и строки. Непустая строка неизвестного формата
// считается датой без значения: для скоринга важен сам факт наличия отметки.
func parseTime(v interface{}) *time.Time {
	var t time.Time
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		t = x
	case primitive.DateTime:
		t = x.Time()
	case primitive.Timestamp:
		t = time.Unix(int64(x.T), 0)
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, x); err == nil {
				t = parsed
				break
			}
		}
	default:
		return nil
	}
	t = t.UTC()
	return &t
}
