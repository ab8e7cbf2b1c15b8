package domain

import "encoding/json"

// Localized holds a Swedish/English text pair. Reading through Pick never
// fails: a missing translation falls back to Swedish, then English, then "".
type Localized struct {
	SV string `json:"sv"`
	EN string `json:"en"`
}

// Pick resolves the text for the requested language.
func (l Localized) Pick(lang string) string {
	if lang == "en" && l.EN != "" {
		return l.EN
	}
	if l.SV != "" {
		return l.SV
	}
	return l.EN
}

// ContentDocument is the single site-wide configuration blob. It is always
// read and written whole; the unit of consistency is the entire document.
type ContentDocument struct {
	Revision int64    `json:"revision"`
	Sections Sections `json:"sections"`
	Actions  Actions  `json:"actions"`
}

// Sections groups the independently toggled configuration blocks.
type Sections struct {
	Header       HeaderSection       `json:"header"`
	Hero         HeroSection         `json:"hero"`
	Auctions     AuctionsSection     `json:"auctions"`
	Items        ItemsSection        `json:"items"`
	Terms        TextSection         `json:"terms"`
	Newsletter   ToggleSection       `json:"newsletter"`
	Share        ToggleSection       `json:"share"`
	Chat         ToggleSection       `json:"chat"`
	Registration RegistrationSection `json:"registration"`
	Ratings      ToggleSection       `json:"ratings"`
	Footer       TextSection         `json:"footer"`
	Analytics    AnalyticsSection    `json:"analytics"`
}

type HeaderSection struct {
	Visible   bool            `json:"visible"`
	Title     Localized       `json:"title"`
	Tagline   Localized       `json:"tagline"`
	Languages LanguageToggles `json:"languages"`
}

type LanguageToggles struct {
	SV bool `json:"sv"`
	EN bool `json:"en"`
}

type HeroSection struct {
	Visible  bool      `json:"visible"`
	Heading  Localized `json:"heading"`
	Subtitle Localized `json:"subtitle"`
	Img      string    `json:"img"`
}

// AuctionsSection lists the scheduled auctions. Live events reference entries
// here by index, not ownership.
type AuctionsSection struct {
	Visible bool      `json:"visible"`
	Heading Localized `json:"heading"`
	List    []Auction `json:"list"`
}

type Auction struct {
	ID       string    `json:"id"`
	Title    Localized `json:"title"`
	Address  string    `json:"address"`
	StartISO string    `json:"startIso"`
	Visible  bool      `json:"visible"`
}

type ItemsSection struct {
	Visible bool          `json:"visible"`
	Heading Localized     `json:"heading"`
	List    []CatalogItem `json:"list"`
}

type CatalogItem struct {
	ID         string    `json:"id"`
	Title      Localized `json:"title"`
	Desc       Localized `json:"desc"`
	StartPrice int64     `json:"startPrice"`
	Img        string    `json:"img"`
}

type TextSection struct {
	Visible bool      `json:"visible"`
	Heading Localized `json:"heading"`
	Body    Localized `json:"body"`
}

type ToggleSection struct {
	Visible bool      `json:"visible"`
	Heading Localized `json:"heading"`
}

type RegistrationSection struct {
	Visible bool      `json:"visible"`
	Heading Localized `json:"heading"`
	Info    Localized `json:"info"`
}

// AnalyticsSection toggles which event types the site records.
type AnalyticsSection struct {
	Enabled bool            `json:"enabled"`
	Types   map[string]bool `json:"types"`
}

// RecordsEventType reports whether the document allows recording events of
// the given type. Types absent from the map are allowed, so new event types
// stay recordable without a document migration.
func (d *ContentDocument) RecordsEventType(t EventType) bool {
	if d == nil {
		return true
	}
	a := d.Sections.Analytics
	if !a.Enabled {
		return false
	}
	if v, ok := a.Types[string(t)]; ok {
		return v
	}
	return true
}

// Actions is the live-action sub-tree: insertion order plus events by ID.
type Actions struct {
	Order  []string              `json:"order"`
	Events map[string]*LiveEvent `json:"events"`
}

// DefaultDocument returns the built-in content. Persisted documents are
// decoded over this value, so fields absent from storage keep their defaults
// and consumers never see a partially populated document.
func DefaultDocument() *ContentDocument {
	return &ContentDocument{
		Sections: Sections{
			Header: HeaderSection{
				Visible:   true,
				Title:     Localized{SV: "Auktia", EN: "Auktia"},
				Tagline:   Localized{SV: "Liveauktioner och lösöre", EN: "Live auctions and estate sales"},
				Languages: LanguageToggles{SV: true, EN: true},
			},
			Hero: HeroSection{
				Visible:  true,
				Heading:  Localized{SV: "Kommande auktioner", EN: "Upcoming auctions"},
				Subtitle: Localized{SV: "Följ våra liveauktioner direkt på plats eller online.", EN: "Follow our live auctions on site or online."},
			},
			Auctions:     AuctionsSection{Visible: true, Heading: Localized{SV: "Auktioner", EN: "Auctions"}},
			Items:        ItemsSection{Visible: true, Heading: Localized{SV: "Utvalda objekt", EN: "Featured items"}},
			Terms:        TextSection{Visible: true, Heading: Localized{SV: "Villkor", EN: "Terms"}},
			Newsletter:   ToggleSection{Visible: true, Heading: Localized{SV: "Nyhetsbrev", EN: "Newsletter"}},
			Share:        ToggleSection{Visible: true, Heading: Localized{SV: "Dela", EN: "Share"}},
			Chat:         ToggleSection{Visible: false, Heading: Localized{SV: "Chatt", EN: "Chat"}},
			Registration: RegistrationSection{Visible: true, Heading: Localized{SV: "Anmälan", EN: "Registration"}},
			Ratings:      ToggleSection{Visible: true, Heading: Localized{SV: "Betyg", EN: "Ratings"}},
			Footer:       TextSection{Visible: true},
			Analytics: AnalyticsSection{
				Enabled: true,
				Types: map[string]bool{
					string(EventPageView):     true,
					string(EventSectionView):  true,
					string(EventSubscribe):    true,
					string(EventRegistration): true,
					string(EventRatingSubmit): true,
					string(EventCustom):       true,
				},
			},
		},
		Actions: Actions{
			Order:  []string{},
			Events: map[string]*LiveEvent{},
		},
	}
}

// MergeDocument decodes raw JSON over the built-in defaults. Corrupt input
// yields pure defaults; it never returns an error.
func MergeDocument(raw []byte) *ContentDocument {
	doc := DefaultDocument()
	if len(raw) == 0 {
		return doc
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return DefaultDocument()
	}
	if doc.Actions.Events == nil {
		doc.Actions.Events = map[string]*LiveEvent{}
	}
	if doc.Actions.Order == nil {
		doc.Actions.Order = []string{}
	}
	if doc.Sections.Analytics.Types == nil {
		doc.Sections.Analytics.Types = DefaultDocument().Sections.Analytics.Types
	}
	return doc
}

// LinkedAuction resolves a live event's auction back-reference. The second
// return is false when the index is unset or out of range.
func (d *ContentDocument) LinkedAuction(ev *LiveEvent) (*Auction, bool) {
	if ev == nil || ev.LinkedAuctionIndex == nil {
		return nil, false
	}
	idx := *ev.LinkedAuctionIndex
	if idx < 0 || idx >= len(d.Sections.Auctions.List) {
		return nil, false
	}
	return &d.Sections.Auctions.List[idx], true
}
