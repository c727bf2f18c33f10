package digest

import (
	"net/http"

	"district-digest/internal/domain/entity"
	"district-digest/internal/handler/http/respond"
)

// DistrictsHandler serves GET /districts.
type DistrictsHandler struct{}

// ServeHTTP 地区一覧取得
// @Summary      対応地区一覧
// @Description  ダイジェストが対応する地区の一覧を定義順で返します
// @Tags         districts
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} map[string][]string "地区一覧"
// @Router       /districts [get]
func (h DistrictsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string][]string{"districts": entity.Districts})
}
