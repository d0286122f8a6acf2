package mistral

import (
	"encoding/json"
	"strings"

	"hoteldir/internal/domain"
)

const systemPrompt = `You match a location phrase written by a traveller against a list of hotels.
Hotels are described in Spanish. Answer ONLY with a JSON array of hotel ids, e.g. ["id1","id2"], or [] when nothing matches. No explanations.

Rules:
- If the phrase is only a generic kind of place with no proper name (for example "iglesia", "parque", "centro", "playa", "church", "park", "downtown"), answer [].
- If the phrase names a specific, recognizable place (a city, a named neighbourhood, a named landmark or park), include every hotel that is genuinely near that place or administratively part of it, using city, region, address, location and surroundings.
- Never include a hotel whose fields show no relation to the phrase.
- Use only ids from the list.`

type candidate struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	City         string   `json:"city"`
	Region       string   `json:"region"`
	Address      string   `json:"address"`
	Location     string   `json:"location"`
	Surroundings []string `json:"surroundings"`
}

// userPrompt lists one hotel per line as compact JSON.
func userPrompt(phrase string, ls []domain.Listing) (string, error) {
	var b strings.Builder
	b.WriteString("Location phrase: ")
	q, err := json.Marshal(phrase)
	if err != nil {
		return "", err
	}
	b.Write(q)
	b.WriteString("\n\nHotels:\n")
	for _, l := range ls {
		line, err := json.Marshal(candidate{
			ID: l.ID, Name: l.Name, City: l.City, Region: l.Region,
			Address: l.Address, Location: l.Location, Surroundings: l.Surroundings,
		})
		if err != nil {
			return "", err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	b.WriteString("\nMatching ids (JSON array):")
	return b.String(), nil
}
