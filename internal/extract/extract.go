// Package extract turns free-form chat text and scraped professor pages into
// structured review records ready for ingestion.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"profadvisor/internal/rag"
	"profadvisor/internal/scraper"
)

const extractionPrompt = `You extract professor reviews from student messages.
If the message contains one or more first-hand or relayed reviews of a professor, return them.
Respond with ONLY a JSON object of this exact shape, no prose:
{"new_reviews":[{"professor":"Full Name","subject":"Department","stars":4.5,"review":"the review text"}]}
If the message contains no reviews, return {"new_reviews":[]}.`

const sentimentSystemPrompt = "You are a helpful assistant that provides sentiment analysis."

// Extractor produces rag.Review records from the two supported sources:
// chat text (delegated to a structured completion) and scraped pages.
type Extractor struct {
	completer rag.Completer
	logger    *log.Logger
}

func New(completer rag.Completer, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.New(log.Writer(), "[EXTRACT] ", log.LstdFlags)
	}
	return &Extractor{completer: completer, logger: logger}
}

type extractionResponse struct {
	NewReviews []extractedReview `json:"new_reviews"`
}

type extractedReview struct {
	Professor string  `json:"professor"`
	Subject   string  `json:"subject"`
	Stars     float64 `json:"stars"`
	Review    string  `json:"review"`
}

// FromChat asks the model to pull structured reviews out of a chat message.
// The response must decode into the expected JSON shape; anything else is a
// rag.ExtractionError. A valid response with zero reviews returns an empty
// slice and no error.
func (e *Extractor) FromChat(ctx context.Context, text string) ([]rag.Review, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	raw, err := e.completer.Complete(ctx, extractionPrompt, []rag.Turn{{Role: rag.RoleUser, Content: text}})
	if err != nil {
		return nil, rag.ExtractionError{Reason: "extraction completion failed", Err: err}
	}
	payload, err := extractJSON(raw)
	if err != nil {
		return nil, rag.ExtractionError{Reason: "no JSON object in extraction response", Err: err}
	}
	var resp extractionResponse
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&resp); err != nil {
		return nil, rag.ExtractionError{Reason: "extraction response does not match schema", Err: err}
	}

	reviews := make([]rag.Review, 0, len(resp.NewReviews))
	for i, r := range resp.NewReviews {
		if r.Professor == "" || r.Review == "" {
			return nil, rag.ExtractionError{
				Reason: fmt.Sprintf("review %d missing professor or review text", i),
			}
		}
		reviews = append(reviews, rag.Review{
			Professor: r.Professor,
			Subject:   r.Subject,
			Stars:     r.Stars,
			Review:    r.Review,
		})
	}
	return reviews, nil
}

// FromPage maps a scraped professor page into review records, one per review
// block, tagging each with a sentiment label. Sentiment is enrichment only:
// a classification failure is logged and the record keeps an empty label.
func (e *Extractor) FromPage(ctx context.Context, page scraper.ProfessorPage) []rag.Review {
	reviews := make([]rag.Review, 0, len(page.Reviews))
	for _, text := range page.Reviews {
		sentiment, err := e.classifySentiment(ctx, text)
		if err != nil {
			e.logger.Printf("sentiment classification failed for %s: %v", page.Name, err)
			sentiment = ""
		}
		reviews = append(reviews, rag.Review{
			Professor: page.Name,
			Subject:   page.Subject,
			Stars:     page.Stars,
			Review:    text,
			Sentiment: sentiment,
		})
	}
	return reviews
}

// classifySentiment asks for a single-word label and normalizes it to one of
// positive, neutral, negative.
func (e *Extractor) classifySentiment(ctx context.Context, review string) (string, error) {
	prompt := fmt.Sprintf("Analyze the sentiment of this review: %s. Please respond only with one word, either positive, neutral, or negative.", review)
	out, err := e.completer.Complete(ctx, sentimentSystemPrompt, []rag.Turn{{Role: rag.RoleUser, Content: prompt}})
	if err != nil {
		return "", err
	}
	label := strings.ToLower(strings.TrimSpace(strings.Trim(out, ".")))
	switch label {
	case "positive", "neutral", "negative":
		return label, nil
	}
	return "", fmt.Errorf("unexpected sentiment label %q", out)
}
