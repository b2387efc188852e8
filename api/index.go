package handler

import (
	"hotel/config"
	"hotel/di"
	"hotel/shared/logger"
	"hotel/transport/http"
	netHTTP "net/http"
	"sync"
)

var (
	service *http.HTTP
	once    sync.Once
)

func Handler(w netHTTP.ResponseWriter, r *netHTTP.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		service = di.InitializeService()
	})

	service.ServeHTTP(w, r)
}
