package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// HTTPService 对外 API（后台、前台、RSS、上传静态文件）
type HTTPService struct {
	server *http.Server
}

func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	return &HTTPService{server: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

func (s *HTTPService) Name() string { return "http" }

func (s *HTTPService) Start(context.Context) error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *HTTPService) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
