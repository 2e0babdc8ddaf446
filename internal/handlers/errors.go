package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/httperr"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/monitoring"
)

var businessErrors = map[string]struct {
	status  int
	message string
}{
	httperr.CodeNoData:          {http.StatusNotFound, "No hay datos suficientes para esta consulta."},
	httperr.CodeUnknownChart:    {http.StatusNotFound, "Gráfico desconocido."},
	httperr.CodeUnknownEntity:   {http.StatusNotFound, "Tabla desconocida."},
	httperr.CodeUnknownDataset:  {http.StatusNotFound, "Conjunto de datos desconocido."},
	httperr.CodeInvalidQuestion: {http.StatusBadRequest, "La solicitud está vacía."},
}

// writeError maps business errors to their status; anything else is a 500
// reported to Sentry.
func writeError(c *gin.Context, err error, code, message string) {
	var be httperr.BusinessError
	if errors.As(err, &be) {
		if m, ok := businessErrors[be.Code]; ok {
			httperr.Write(c, m.status, be.Code, m.message)
			return
		}
		httperr.BadRequest(c, be.Code, message)
		return
	}

	_ = c.Error(err)
	monitoring.CaptureError(err, map[string]any{
		"path": c.FullPath(),
		"code": code,
	})
	httperr.Internal(c, code, message)
}

var errUnknownDataset = httperr.ErrBusiness(httperr.CodeUnknownDataset)

func invalidFilter(c *gin.Context) {
	httperr.BadRequest(c, "invalid_filter", "Filtro inválido: use ids numéricos y fechas YYYY-MM-DD.")
}
