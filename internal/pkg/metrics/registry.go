package metrics

import "github.com/prometheus/client_golang/prometheus"

var reg = prometheus.DefaultRegisterer

func Registerer() prometheus.Registerer { return reg }

// UseRegisterer swaps the registerer used by the lazy collectors below.
// Call it before any collector group is first touched.
func UseRegisterer(r prometheus.Registerer) {
	if r != nil {
		reg = r
	}
}
