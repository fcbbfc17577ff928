package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-id-api/internal/dto"
	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
)

type fakeTrackSrv struct {
	lastID string
	resp   *dto.TrackResponse
	err    error
}

func (f *fakeTrackSrv) Track(_ context.Context, id string) (*dto.TrackResponse, error) {
	f.lastID = id
	return f.resp, f.err
}

func TestTrackHandlerFound(t *testing.T) {
	srv := &fakeTrackSrv{resp: &dto.TrackResponse{
		Request:  models.IDRequest{ID: "REQ-2023-0001", Status: models.StatusApproved.Info()},
		Timeline: []models.TimelineStage{{Name: "Application Submitted", Status: models.StageComplete}},
	}}
	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/track-request/REQ-2023-0001", nil), "c1", testStudent())
	c.Params = gin.Params{{Key: "id", Value: "REQ-2023-0001"}}

	NewTrackHandler(srv).Track(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "REQ-2023-0001", srv.lastID)
	request := decodeEnvelope(t, rec).Data["request"].(map[string]interface{})
	status := request["status"].(map[string]interface{})
	assert.Equal(t, "Approved", status["statusText"])
}

func TestTrackHandlerErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{appErrors.Clone(appErrors.ErrNotFound, "Request not found. Please check the ID and try again."), http.StatusNotFound},
		{appErrors.Clone(appErrors.ErrTransportFailure, ""), http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/track-request/x", nil), "c1", testStudent())
		c.Params = gin.Params{{Key: "id", Value: "x"}}
		NewTrackHandler(&fakeTrackSrv{err: tc.err}).Track(c)
		assert.Equal(t, tc.code, rec.Code)
	}
}
