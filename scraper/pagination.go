package scraper

import (
	"fmt"
	"net/url"
	"strconv"
)

// pageURL returns the category URL addressed to a specific page number by
// setting (or replacing) the pagination query parameter.
func pageURL(baseURL, param string, page int) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse category URL: %w", err)
	}

	query := parsed.Query()
	query.Set(param, strconv.Itoa(page))
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
