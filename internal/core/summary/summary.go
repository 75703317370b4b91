package summary

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"property-search-service/internal/core/domain"
)

// DefaultEbrochureBase - ссылка на e-brochure в CRM, если у объекта нет своей
const DefaultEbrochureBase = "https://app.rexsoftware.com/public/ebrochure/?region=eu_uk_1&account_id=3877&listing_id="

const geohashPrecision = 7

var houseNumberRegex = regexp.MustCompile(`^\s*\d+\s*`)

type subcategoryResolver interface {
	CanonicalSubcategory(text string) (string, bool)
}

// Summarizer проецирует объект в форму, которую видит клиент
type Summarizer struct {
	ebrochureBase string
	vocabulary    subcategoryResolver
	printer       *message.Printer
}

func NewSummarizer(ebrochureBase string, vocabulary subcategoryResolver) *Summarizer {
	if ebrochureBase == "" {
		ebrochureBase = DefaultEbrochureBase
	}
	return &Summarizer{
		ebrochureBase: ebrochureBase,
		vocabulary:    vocabulary,
		printer:       message.NewPrinter(language.BritishEnglish),
	}
}

func (s *Summarizer) Summarize(l *domain.Listing) domain.ListingSummary {
	out := domain.ListingSummary{
		ListingID:    l.ID,
		Address:      safeAddress(l),
		Size:         l.Size.Display,
		Price:        s.priceText(l),
		EbrochureURL: l.EbrochureLink,
		MainImageURL: l.MainImageURL,
		Location: domain.SummaryLocation{
			Postcode:     l.Address.Postcode,
			Locality:     l.Address.Locality,
			SuburbOrTown: l.Address.SuburbOrTown,
			Latitude:     l.Address.Latitude,
			Longitude:    l.Address.Longitude,
		},
		Features:   l.Features,
		Highlights: strings.Join(nonEmpty(l.Highlights), ", "),
		Marketing: domain.SummaryMarketing{
			Heading: l.Advert.Heading,
			Body:    l.Advert.Body,
		},
		Amenities: amenities(l),
	}

	if out.EbrochureURL == "" {
		out.EbrochureURL = s.ebrochureBase + l.ID
	}
	if out.Features == nil {
		out.Features = []string{}
	}
	if lat, lon := l.Address.Latitude, l.Address.Longitude; lat != nil && lon != nil {
		out.Location.Geohash = geohash.EncodeWithPrecision(*lat, *lon, geohashPrecision)
	}

	var resolve func(string) (string, bool)
	if s.vocabulary != nil {
		resolve = s.vocabulary.CanonicalSubcategory
	}
	if canon, ok := l.CanonicalSubcategory(resolve); ok {
		out.Subcategory = canon
	}

	if len(l.Agents) > 0 {
		a := l.Agents[0]
		out.Agent = &domain.SummaryAgent{
			ID:              a.ID,
			Name:            a.Name,
			Email:           a.Email,
			PhoneMobile:     a.PhoneMobile,
			PhoneDirect:     a.PhoneDirect,
			Position:        a.Position,
			ProfileImageURL: a.ProfileImageURL,
		}
	}
	return out
}

// safeAddress не раскрывает номер дома: hidden_address, иначе отображаемый адрес без номера.
func safeAddress(l *domain.Listing) string {
	if l.Address.HiddenAddress != "" {
		return l.Address.HiddenAddress
	}
	if stripped := strings.TrimSpace(houseNumberRegex.ReplaceAllString(l.DisplayAddress, "")); stripped != "" {
		return stripped
	}
	return l.DisplayAddress
}

// priceText: сначала текст из CRM, потом отформатированные числовые цены.
func (s *Summarizer) priceText(l *domain.Listing) string {
	if l.Prices.Display != "" {
		return l.Prices.Display
	}
	for _, v := range []interface{}{l.Prices.SortGBP, l.Prices.SaleGBP, l.Prices.MatchSale, l.Prices.RentPCMGBP} {
		if n, ok := domain.LooseInt(v); ok && n != 0 {
			return s.formatGBP(n)
		}
	}
	return ""
}

func (s *Summarizer) formatGBP(v int) string {
	return s.printer.Sprintf("£%d", v)
}

func amenities(l *domain.Listing) domain.SummaryAmenities {
	attrs := l.Attributes
	if len(attrs) == 0 {
		attrs = l.AttributesFull
	}
	return domain.SummaryAmenities{
		Beds:  rawString(attrs["bedrooms"], l.Beds),
		Baths: rawString(attrs["bathrooms"], l.Baths),
	}
}

// rawString возвращает первое непустое значение как строку, без разбора.
func rawString(values ...interface{}) *string {
	for _, v := range values {
		var s string
		switch t := v.(type) {
		case nil:
			continue
		case string:
			if t == "" {
				continue
			}
			s = t
		case float64:
			if t == 0 {
				continue
			}
			s = strconv.FormatFloat(t, 'f', -1, 64)
		case float32:
			if t == 0 {
				continue
			}
			s = strconv.FormatFloat(float64(t), 'f', -1, 32)
		default:
			s = fmt.Sprint(t)
			if s == "0" {
				continue
			}
		}
		return &s
	}
	return nil
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			out = append(out, it)
		}
	}
	return out
}
