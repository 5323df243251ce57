package service

import (
	"net/http"
)

const (
	healthOk          string = "ok"
	healthUnavailable string = "unavailable"
)

func (s *service) endpointHealth(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	status := map[string]string{"database": healthOk}
	code := http.StatusOK
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			status["database"] = healthUnavailable
			code = http.StatusServiceUnavailable
			s.Error(ctx, "health check failed, database ping: %s", err)
		}
	}
	s.handleResponse(ctx, writer, nil, code, status)
}
