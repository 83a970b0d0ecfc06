package joblogs

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/warraqbooks/warraq/pkg/errcodes"
)

type handler struct {
	service *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()
	jobID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Job")
	}

	params := ListJobLogsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	logs, total, err := h.service.ListJobLogsWithTotal(ctx, ListJobLogsOptions{
		JobID:  &jobID,
		Levels: params.Level,
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
	}))
}
