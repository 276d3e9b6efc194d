// pkg/utils/rusage.go

package utils

import (
	"syscall"
	"time"
)

type Rusage struct {
	syscall.Rusage
}

func (ru *Rusage) GetUtime() float64 {
	return float64(ru.Utime.Sec) + float64(ru.Utime.Usec)/1e6
}

func (ru *Rusage) GetStime() float64 {
	return float64(ru.Stime.Sec) + float64(ru.Stime.Usec)/1e6
}

// CPUSince returns user and system CPU time consumed since prev.
func (ru *Rusage) CPUSince(prev *Rusage) (user, sys time.Duration) {
	user = time.Duration((ru.GetUtime() - prev.GetUtime()) * float64(time.Second))
	sys = time.Duration((ru.GetStime() - prev.GetStime()) * float64(time.Second))
	return
}

func GetRusage() *Rusage {
	var ru syscall.Rusage
	_ = syscall.Getrusage(syscall.RUSAGE_SELF, &ru)
	return &Rusage{ru}
}
