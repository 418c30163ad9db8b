package fetcher

import (
	"context"
	"errors"
	"testing"
)

// stubFetcher counts calls and replays a fixed outcome.
type stubFetcher struct {
	page  *Page
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func blockedErr(url string) error {
	return &Error{URL: url, Strategy: StrategyStatic, Err: ErrBlocked}
}

func TestFallbackEscalatesOnBlock(t *testing.T) {
	primary := &stubFetcher{err: blockedErr("https://x.fr/c")}
	rendered := &stubFetcher{page: &Page{HTML: "<html>ok</html>", Strategy: StrategyRendered}}

	f := NewFallbackFetcher(primary, rendered)
	page, err := f.Fetch(context.Background(), "https://x.fr/c")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.Strategy != StrategyRendered {
		t.Errorf("strategy = %q, want rendered", page.Strategy)
	}
	if primary.calls != 1 || rendered.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, rendered.calls)
	}
}

func TestFallbackEscalatesOnlyOnce(t *testing.T) {
	renderedErr := &Error{URL: "https://x.fr/c", Strategy: StrategyRendered, Err: ErrBlocked}
	primary := &stubFetcher{err: blockedErr("https://x.fr/c")}
	rendered := &stubFetcher{err: renderedErr}

	f := NewFallbackFetcher(primary, rendered)
	_, err := f.Fetch(context.Background(), "https://x.fr/c")
	if err == nil {
		t.Fatal("want error when the rendered retry is blocked too")
	}
	if rendered.calls != 1 {
		t.Errorf("rendered calls = %d, want exactly 1", rendered.calls)
	}
}

func TestFallbackSkipsPlainFailures(t *testing.T) {
	netErr := &Error{URL: "https://x.fr/c", Strategy: StrategyStatic, Err: errors.New("connection refused")}
	primary := &stubFetcher{err: netErr}
	rendered := &stubFetcher{page: &Page{HTML: "unused"}}

	f := NewFallbackFetcher(primary, rendered)
	_, err := f.Fetch(context.Background(), "https://x.fr/c")
	if !errors.Is(err, netErr.Err) {
		t.Fatalf("err = %v, want the primary error back", err)
	}
	if rendered.calls != 0 {
		t.Errorf("rendered calls = %d, plain failures must not escalate", rendered.calls)
	}
}

func TestFallbackSuccessStaysStatic(t *testing.T) {
	primary := &stubFetcher{page: &Page{HTML: "<html>ok</html>", Strategy: StrategyStatic}}
	rendered := &stubFetcher{}

	f := NewFallbackFetcher(primary, rendered)
	page, err := f.Fetch(context.Background(), "https://x.fr/c")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.Strategy != StrategyStatic {
		t.Errorf("strategy = %q, want static", page.Strategy)
	}
	if rendered.calls != 0 {
		t.Errorf("rendered calls = %d, want 0", rendered.calls)
	}
}

func TestLooksBlocked(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"empty", "", true},
		{"whitespace only", "  \n\t ", true},
		{"cloudflare interstitial", "<title>Just a moment...</title>", true},
		{"datadome challenge", `<script src="https://geo.captcha-delivery.com/captcha"></script>`, true},
		{"akamai denial", "<h1>Access Denied</h1>", true},
		{"real listing", "<html><div class='product'>Carrelage</div></html>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksBlocked(tt.body); got != tt.want {
				t.Errorf("looksBlocked = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlockedStatus(t *testing.T) {
	for code, want := range map[int]bool{200: false, 403: true, 404: false, 429: true, 500: false} {
		if got := blockedStatus(code); got != want {
			t.Errorf("blockedStatus(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := blockedErr("https://x.fr/c")
	if !errors.Is(err, ErrBlocked) {
		t.Error("fetcher errors must unwrap to ErrBlocked")
	}
}
