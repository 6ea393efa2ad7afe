package jobxredis

import (
	"net/http"

	"github.com/Abraxas-365/fittsee/pkg/errx"
)

var redisErrors = errx.NewRegistry("JOBX_REDIS")

var (
	ErrPush    = redisErrors.Register("PUSH", errx.TypeUnavailable, http.StatusServiceUnavailable, "Redis push failed")
	ErrPop     = redisErrors.Register("POP", errx.TypeUnavailable, http.StatusServiceUnavailable, "Redis pop failed")
	ErrAck     = redisErrors.Register("ACK", errx.TypeUnavailable, http.StatusServiceUnavailable, "Redis ack failed")
	ErrRecover = redisErrors.Register("RECOVER", errx.TypeUnavailable, http.StatusServiceUnavailable, "Redis recover failed")
	ErrLen     = redisErrors.Register("LEN", errx.TypeUnavailable, http.StatusServiceUnavailable, "Redis queue length failed")
)
