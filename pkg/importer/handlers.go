package importer

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/skolio/kabinet/pkg/errcodes"
)

type handler struct {
	importService *Service
}

func (h *handler) start(c echo.Context) error {
	ctx := c.Request().Context()

	params := StartImportPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if !params.Confirm {
		return errcodes.ValidationError("The target category must be confirmed before importing.")
	}

	selected := map[string]bool{}
	for _, key := range params.Selected {
		selected[key] = true
	}

	report, err := h.importService.Start(ctx, RunOptions{
		BookIDs:       params.BookIDs,
		Category:      params.Category,
		DownloadFiles: params.DownloadFiles,
		Overwrite:     params.Overwrite,
		Selected:      selected,
		DestinationID: params.DestinationID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusAccepted, report))
}

func (h *handler) current(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, h.importService.Current()))
}

func (h *handler) previewBook(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.importService.PreviewBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}
