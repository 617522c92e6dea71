package bgg

import (
	"encoding/xml"
	"html"
	"strconv"
	"strings"
)

// Thing is the normalized boardgame record returned by the XML API.
type Thing struct {
	BGGID         int64
	Name          string
	AlternateName []string
	Description   string
	YearPublished *int
	MinPlayers    *int
	MaxPlayers    *int
	PlayingTime   *int
	MinAge        *int
	ImageURL      string
	ThumbnailURL  string
	Categories    []string
	Mechanics     []string
	Designers     []string
	Publishers    []string
	Rating        *float64
	Rank          *int
}

// SearchResult is a single hit from the search endpoint.
type SearchResult struct {
	BGGID         int64
	Name          string
	YearPublished *int
}

type thingItems struct {
	XMLName xml.Name    `xml:"items"`
	Items   []thingItem `xml:"item"`
}

type thingItem struct {
	Type          string      `xml:"type,attr"`
	ID            int64       `xml:"id,attr"`
	Thumbnail     string      `xml:"thumbnail"`
	Image         string      `xml:"image"`
	Names         []thingName `xml:"name"`
	Description   string      `xml:"description"`
	YearPublished valueAttr   `xml:"yearpublished"`
	MinPlayers    valueAttr   `xml:"minplayers"`
	MaxPlayers    valueAttr   `xml:"maxplayers"`
	PlayingTime   valueAttr   `xml:"playingtime"`
	MinAge        valueAttr   `xml:"minage"`
	Links         []thingLink `xml:"link"`
	Statistics    *statistics `xml:"statistics"`
}

type thingName struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type valueAttr struct {
	Value string `xml:"value,attr"`
}

type floatAttr struct {
	Value string `xml:"value,attr"`
}

type thingLink struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type statistics struct {
	Ratings struct {
		Average floatAttr `xml:"average"`
		Ranks   struct {
			Ranks []rankEntry `xml:"rank"`
		} `xml:"ranks"`
	} `xml:"ratings"`
}

type rankEntry struct {
	Type  string `xml:"type,attr"`
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type searchItems struct {
	XMLName xml.Name     `xml:"items"`
	Items   []searchItem `xml:"item"`
}

type searchItem struct {
	Type          string    `xml:"type,attr"`
	ID            int64     `xml:"id,attr"`
	Name          thingName `xml:"name"`
	YearPublished valueAttr `xml:"yearpublished"`
}

func (v valueAttr) intPtr() *int {
	return parseIntPtr(v.Value)
}

func (f floatAttr) floatPtr() *float64 {
	trimmed := strings.TrimSpace(f.Value)
	if trimmed == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseIntPtr(raw string) *int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "not ranked") {
		return nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil
	}
	return &parsed
}

func (i thingItem) toThing() Thing {
	t := Thing{
		BGGID:         i.ID,
		Description:   html.UnescapeString(strings.TrimSpace(i.Description)),
		ImageURL:      strings.TrimSpace(i.Image),
		ThumbnailURL:  strings.TrimSpace(i.Thumbnail),
		YearPublished: i.YearPublished.intPtr(),
		MinPlayers:    i.MinPlayers.intPtr(),
		MaxPlayers:    i.MaxPlayers.intPtr(),
		PlayingTime:   i.PlayingTime.intPtr(),
		MinAge:        i.MinAge.intPtr(),
	}

	for _, name := range i.Names {
		if name.Type == "primary" && t.Name == "" {
			t.Name = name.Value
			continue
		}
		t.AlternateName = append(t.AlternateName, name.Value)
	}

	for _, link := range i.Links {
		switch link.Type {
		case "boardgamecategory":
			t.Categories = append(t.Categories, link.Value)
		case "boardgamemechanic":
			t.Mechanics = append(t.Mechanics, link.Value)
		case "boardgamedesigner":
			t.Designers = append(t.Designers, link.Value)
		case "boardgamepublisher":
			t.Publishers = append(t.Publishers, link.Value)
		}
	}

	if i.Statistics != nil {
		if avg := i.Statistics.Ratings.Average.floatPtr(); avg != nil && *avg > 0 {
			t.Rating = avg
		}
		for _, rank := range i.Statistics.Ratings.Ranks.Ranks {
			if rank.Type == "subtype" && rank.Name == "boardgame" {
				t.Rank = parseIntPtr(rank.Value)
				break
			}
		}
	}

	return t
}
