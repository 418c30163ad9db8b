package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/saitej13sai/donizo-material-scraper/models"
)

// Live holds the index of the most recent run so a long-lived server can
// follow scheduled re-scrapes. Swaps are atomic; in-flight requests keep
// the index they started with.
type Live struct {
	index atomic.Pointer[Index]
}

// NewLive creates a Live source that is empty until the first Update.
func NewLive() *Live {
	l := &Live{}
	l.Update(nil)
	return l
}

// Update replaces the served records with a fresh run's output.
func (l *Live) Update(materials []models.Material) {
	l.index.Store(NewIndex(materials))
}

// NewServer builds the review/search HTTP server over one run's records.
func NewServer(materials []models.Material) *gin.Engine {
	index := NewIndex(materials)
	return newRouter(func() *Index { return index })
}

// NewLiveServer builds the server over a Live source, re-reading it on
// every request.
func NewLiveServer(live *Live) *gin.Engine {
	return newRouter(live.index.Load)
}

func newRouter(source func() *Index) *gin.Engine {
	router := gin.Default()
	router.GET("/materials/:category", materialsHandler(source))
	router.GET("/search", searchHandler(source))
	return router
}

func materialsHandler(source func() *Index) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Param("category")
		site := c.Query("site")
		limit := intQuery(c, "limit", 100)

		var rows []models.Material
		for _, m := range source().Docs() {
			if !strings.EqualFold(m.Category, category) {
				continue
			}
			if site != "" && !strings.EqualFold(m.Site, site) {
				continue
			}
			rows = append(rows, m)
			if len(rows) >= limit {
				break
			}
		}

		if len(rows) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"detail": "No data for given filters"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func searchHandler(source func() *Index) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		if len([]rune(query)) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "query parameter q must be at least 2 characters"})
			return
		}

		hits := source().Search(query, c.Query("site"), c.Query("category"), intQuery(c, "top_k", 20))
		if len(hits) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"detail": "No data after filters"})
			return
		}
		c.JSON(http.StatusOK, hits)
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}
