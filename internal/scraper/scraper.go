// Package scraper fetches a professor's rating page and parses it into the
// structured fields the ingestion pipeline consumes.
package scraper

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"profadvisor/internal/rag"
)

// ProfessorPage is everything we pull off a single professor's page.
type ProfessorPage struct {
	Name    string
	Subject string
	Stars   float64
	Reviews []string
}

// Fetcher retrieves the rendered HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, link string) (string, error)
}

// Scraper fetches and parses professor pages.
type Scraper struct {
	fetcher    Fetcher
	maxReviews int
	logger     *log.Logger
}

func New(fetcher Fetcher, maxReviews int, logger *log.Logger) *Scraper {
	if logger == nil {
		logger = log.New(log.Writer(), "[SCRAPER] ", log.LstdFlags)
	}
	return &Scraper{fetcher: fetcher, maxReviews: maxReviews, logger: logger}
}

// Scrape fetches the page and parses it. Fetch errors are wrapped as
// extraction failures since the caller cannot distinguish the two usefully.
func (s *Scraper) Scrape(ctx context.Context, link string) (ProfessorPage, error) {
	html, err := s.fetcher.Fetch(ctx, link)
	if err != nil {
		return ProfessorPage{}, rag.ExtractionError{Reason: "fetch page", Err: err}
	}
	page, err := ParsePage(html)
	if err != nil {
		return ProfessorPage{}, err
	}
	if s.maxReviews > 0 && len(page.Reviews) > s.maxReviews {
		s.logger.Printf("truncating %d reviews to %d for %s", len(page.Reviews), s.maxReviews, page.Name)
		page.Reviews = page.Reviews[:s.maxReviews]
	}
	return page, nil
}

// ParsePage extracts the professor name, department, star rating and review
// blocks from the page HTML. The site ships hashed class names, so selectors
// match on stable class-name prefixes rather than full classes. A page
// missing any required field is a hard failure with no partial result.
func ParsePage(html string) (ProfessorPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ProfessorPage{}, rag.ExtractionError{Reason: "parse html", Err: err}
	}

	var page ProfessorPage

	title, _ := doc.Find(`meta[name="title"]`).Attr("content")
	if before, _, found := strings.Cut(title, " at "); found {
		page.Name = strings.TrimSpace(before)
	}
	if page.Name == "" {
		return ProfessorPage{}, rag.ExtractionError{Reason: "professor name not found"}
	}

	starsText := strings.TrimSpace(doc.Find(`div[class*="RatingValue__Numerator"]`).First().Text())
	if starsText == "" {
		return ProfessorPage{}, rag.ExtractionError{Reason: "star rating not found"}
	}
	page.Stars, err = strconv.ParseFloat(starsText, 64)
	if err != nil {
		return ProfessorPage{}, rag.ExtractionError{
			Reason: fmt.Sprintf("star rating %q is not numeric", starsText),
			Err:    err,
		}
	}

	page.Subject = strings.TrimSpace(doc.Find(`a[class*="TeacherDepartment__StyledDepartmentLink"] b`).First().Text())
	if page.Subject == "" {
		return ProfessorPage{}, rag.ExtractionError{Reason: "subject not found"}
	}

	doc.Find(`div[class*="Comments__StyledComments"]`).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			page.Reviews = append(page.Reviews, text)
		}
	})
	if len(page.Reviews) == 0 {
		return ProfessorPage{}, rag.ExtractionError{Reason: "no reviews found"}
	}

	return page, nil
}
