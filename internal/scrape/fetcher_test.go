package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_PrefersSpecSection(t *testing.T) {
	doc := `<html><body>
		<nav>Home | Products | Support</nav>
		<div class="specs-parameter-wrap">
			<h2>Aircraft</h2>
			<p>Takeoff Weight: 1063 g</p>
			<p>Max Flight Time: 45 minutes</p>
		</div>
		<footer>Copyright</footer>
	</body></html>`

	text, err := ExtractText(doc)
	require.NoError(t, err)

	assert.Contains(t, text, "Takeoff Weight: 1063 g")
	assert.Contains(t, text, "Max Flight Time: 45 minutes")
	assert.NotContains(t, text, "Home | Products")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractText_FallsBackToWholeBody(t *testing.T) {
	doc := `<html><body><h1>Mini 5</h1><p>Weight: 249g</p></body></html>`

	text, err := ExtractText(doc)
	require.NoError(t, err)
	assert.Contains(t, text, "Mini 5")
	assert.Contains(t, text, "Weight: 249g")
}

func TestExtractText_DropsScriptsAndStyles(t *testing.T) {
	doc := `<html><head><style>.x{color:red}</style></head><body>
		<script>trackPageView()</script>
		<p>Max Speed: 25 m/s</p>
		<noscript>enable javascript</noscript>
	</body></html>`

	text, err := ExtractText(doc)
	require.NoError(t, err)
	assert.Contains(t, text, "Max Speed: 25 m/s")
	assert.NotContains(t, text, "trackPageView")
	assert.NotContains(t, text, "color:red")
	assert.NotContains(t, text, "enable javascript")
}

func TestExtractText_NormalizesWhitespace(t *testing.T) {
	doc := "<html><body><p>  line one  </p>\n\n\n<p>line two</p></body></html>"

	text, err := ExtractText(doc)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestExtractText_MultipleSpecSections(t *testing.T) {
	doc := `<html><body>
		<div class="specs-parameter-wrap"><p>Camera: 4/3 CMOS</p></div>
		<div class="other">ignored</div>
		<div class="specs-parameter-wrap"><p>Gimbal: 3-axis</p></div>
	</body></html>`

	text, err := ExtractText(doc)
	require.NoError(t, err)
	assert.Contains(t, text, "Camera: 4/3 CMOS")
	assert.Contains(t, text, "Gimbal: 3-axis")
	assert.NotContains(t, text, "ignored")
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dronemind/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`<html><body><div class="specs-parameter-wrap"><p>Range: 20km</p></div></body></html>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	text, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Range: 20km", text)
}

func TestHTTPFetcher_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	f := NewHTTPFetcher(5 * time.Second)
	_, err := f.Fetch(ctx, srv.URL)
	assert.Error(t, err)
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	f := NewHTTPFetcher(time.Second)
	_, err := f.Fetch(context.Background(), "http://\x7f")
	assert.Error(t, err)
}
