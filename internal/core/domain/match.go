package domain

// Tier - уровень ослабления условий поиска
type Tier string

const (
	TierIDExact       Tier = "id_exact"
	TierTextStrict    Tier = "text_strict"
	TierTextNoPrice   Tier = "text_no_price"
	TierTextNoBeds    Tier = "text_no_beds"
	TierRegexFallback Tier = "regex_fallback"
	TierNone          Tier = "none"
)

// ScoredID - строка отладочного трейса
type ScoredID struct {
	ID    string  `json:"_id"`
	Score float64 `json:"score"`
}

// TierTrace - топ кандидатов одного тира. Пустой список - тир ничего не нашел.
type TierTrace struct {
	Tier       Tier       `json:"tier"`
	Candidates []ScoredID `json:"candidates"`
}

// MatchResult - итог работы движка
type MatchResult struct {
	Listing *Listing
	Tier    Tier
	Debug   []TierTrace
}

// Found сообщает, нашелся ли объект.
func (r *MatchResult) Found() bool {
	return r != nil && r.Listing != nil
}
