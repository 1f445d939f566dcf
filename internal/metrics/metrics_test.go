package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestHandlerExposesContractMetrics(t *testing.T) {
	RecordTransition("sign", "semnat")
	RecordExport(nil)
	RecordExport(errors.New("boom"))
	RecordOffer(nil)
	TrackDBOperation("contracts.list")(time.Now())

	body := scrape(t)
	assert.Contains(t, body, `autoimport_contract_transitions_total{action="sign",status="semnat"}`)
	assert.Contains(t, body, `autoimport_contract_exports_total{result="success"}`)
	assert.Contains(t, body, `autoimport_contract_exports_total{result="error"}`)
	assert.Contains(t, body, `autoimport_car_request_offers_total{result="success"}`)
	assert.Contains(t, body, `autoimport_db_operation_duration_seconds_count{operation="contracts.list"}`)
}
