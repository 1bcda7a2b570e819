package scraper

import (
	"context"
	"errors"
	"testing"

	"profadvisor/internal/rag"
)

const samplePage = `<html>
<head>
<meta name="title" content="Jane Doe at Example University | Rate My Professors"/>
</head>
<body>
<div class="RatingValue__Numerator-qw8sqy-2 liyUjw">4.3</div>
<a class="TeacherDepartment__StyledDepartmentLink-fl79e8-0 iMmVHb" href="#"><b>Physics department</b></a>
<div class="Comments__StyledComments-dzzyvm-0 gRjWel">Great lectures, tough exams.</div>
<div class="Comments__StyledComments-dzzyvm-0 gRjWel">Labs were the best part.</div>
</body>
</html>`

func TestParsePage(t *testing.T) {
	page, err := ParsePage(samplePage)
	if err != nil {
		t.Fatalf("ParsePage returned error: %v", err)
	}
	if page.Name != "Jane Doe" {
		t.Fatalf("expected name Jane Doe, got %q", page.Name)
	}
	if page.Subject != "Physics department" {
		t.Fatalf("expected subject, got %q", page.Subject)
	}
	if page.Stars != 4.3 {
		t.Fatalf("expected 4.3 stars, got %v", page.Stars)
	}
	if len(page.Reviews) != 2 || page.Reviews[0] != "Great lectures, tough exams." {
		t.Fatalf("unexpected reviews: %#v", page.Reviews)
	}
}

func TestParsePageMissingFields(t *testing.T) {
	cases := map[string]string{
		"no name": `<html><body>
			<div class="RatingValue__Numerator-x">4.0</div>
			<a class="TeacherDepartment__StyledDepartmentLink-x"><b>Math</b></a>
			<div class="Comments__StyledComments-x">fine</div>
			</body></html>`,
		"no stars": `<html><head><meta name="title" content="A at B"/></head><body>
			<a class="TeacherDepartment__StyledDepartmentLink-x"><b>Math</b></a>
			<div class="Comments__StyledComments-x">fine</div>
			</body></html>`,
		"no subject": `<html><head><meta name="title" content="A at B"/></head><body>
			<div class="RatingValue__Numerator-x">4.0</div>
			<div class="Comments__StyledComments-x">fine</div>
			</body></html>`,
		"no reviews": `<html><head><meta name="title" content="A at B"/></head><body>
			<div class="RatingValue__Numerator-x">4.0</div>
			<a class="TeacherDepartment__StyledDepartmentLink-x"><b>Math</b></a>
			</body></html>`,
		"bad stars": `<html><head><meta name="title" content="A at B"/></head><body>
			<div class="RatingValue__Numerator-x">N/A</div>
			<a class="TeacherDepartment__StyledDepartmentLink-x"><b>Math</b></a>
			<div class="Comments__StyledComments-x">fine</div>
			</body></html>`,
	}
	for name, html := range cases {
		_, err := ParsePage(html)
		var extractErr rag.ExtractionError
		if !errors.As(err, &extractErr) {
			t.Fatalf("%s: expected ExtractionError, got %v", name, err)
		}
	}
}

type fetcherStub struct {
	html string
	err  error
}

func (f fetcherStub) Fetch(ctx context.Context, link string) (string, error) {
	return f.html, f.err
}

func TestScrapeTruncatesReviews(t *testing.T) {
	s := New(fetcherStub{html: samplePage}, 1, nil)
	page, err := s.Scrape(context.Background(), "https://example.com/prof/1")
	if err != nil {
		t.Fatalf("Scrape returned error: %v", err)
	}
	if len(page.Reviews) != 1 {
		t.Fatalf("expected reviews truncated to 1, got %d", len(page.Reviews))
	}
}

func TestScrapeFetchFailure(t *testing.T) {
	s := New(fetcherStub{err: errors.New("timeout")}, 0, nil)
	_, err := s.Scrape(context.Background(), "https://example.com/prof/1")
	var extractErr rag.ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}
