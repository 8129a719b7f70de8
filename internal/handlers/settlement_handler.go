package handlers

import (
	"net/http"
	"strings"
	"time"

	"locate-service/internal/settlement"
	"locate-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	calendar *settlement.Calendar
}

func NewSettlementHandler(calendar *settlement.Calendar) *SettlementHandler {
	return &SettlementHandler{calendar: calendar}
}

// SettlementDate handles GET /api/v1/settlement/date
// @Summary      Calculate a settlement date
// @Description  Applies the market convention (T+2, Japan T+3 after its cutoff) to the trade date. The trade date defaults to today in the market's zone.
// @Tags         settlement
// @Produce      json
// @Security     BearerAuth
// @Param        market     query     string  true   "Market code"  example(JP)
// @Param        tradeDate  query     string  false  "Trade date (YYYY-MM-DD)"
// @Success      200        {object}  SettlementDateResponse
// @Failure      400        {object}  errors.StandardError
// @Router       /settlement/date [get]
func (h *SettlementHandler) SettlementDate(c *gin.Context) {
	market := strings.ToUpper(strings.TrimSpace(c.Query("market")))
	if market == "" {
		c.Error(errors.NewValidationError("market is required", "market"))
		c.Abort()
		return
	}

	tradeDate := h.calendar.Today(market)
	if raw := c.Query("tradeDate"); raw != "" {
		parsed, err := time.Parse(DateLayout, raw)
		if err != nil {
			c.Error(errors.NewInvalidRequest("invalid trade date", "expected format YYYY-MM-DD"))
			c.Abort()
			return
		}
		tradeDate = parsed
	}

	c.JSON(http.StatusOK, SettlementDateResponse{
		Market:         market,
		TradeDate:      tradeDate.Format(DateLayout),
		SettlementDate: h.calendar.CalculateMarketSettlementDate(tradeDate, market).Format(DateLayout),
		BeforeCutoff:   h.calendar.IsBeforeMarketCutoff(market),
	})
}

// SettlementDay handles GET /api/v1/settlement/day
// @Summary      Place a date on the settlement ladder
// @Description  Returns the business-day offset (0..4) of date from businessDate, or -1 when it falls outside the ladder.
// @Tags         settlement
// @Produce      json
// @Security     BearerAuth
// @Param        businessDate  query     string  true  "Business date (YYYY-MM-DD)"
// @Param        date          query     string  true  "Date to place (YYYY-MM-DD)"
// @Success      200           {object}  SettlementDayResponse
// @Failure      400           {object}  errors.StandardError
// @Router       /settlement/day [get]
func (h *SettlementHandler) SettlementDay(c *gin.Context) {
	businessDate, err := time.Parse(DateLayout, c.Query("businessDate"))
	if err != nil {
		c.Error(errors.NewInvalidRequest("invalid business date", "expected format YYYY-MM-DD"))
		c.Abort()
		return
	}
	date, err := time.Parse(DateLayout, c.Query("date"))
	if err != nil {
		c.Error(errors.NewInvalidRequest("invalid date", "expected format YYYY-MM-DD"))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, SettlementDayResponse{
		BusinessDate:  businessDate.Format(DateLayout),
		Date:          date.Format(DateLayout),
		SettlementDay: settlement.CalculateSettlementDay(businessDate, date),
	})
}
