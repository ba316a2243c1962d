package importer

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutesWithGroup registers import routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, svc *Service) {
	h := &handler{importService: svc}

	g.POST("", h.start)
	g.GET("/current", h.current)
	g.GET("/books/:id", h.previewBook)
}
