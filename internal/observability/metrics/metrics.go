// Package metrics defines the metrics the front end emits and their tags.
package metrics

import (
	"strconv"
	"strings"
	"time"

	obserrors "github.com/target/positions-ui/internal/observability/errors"
	"github.com/target/positions-ui/internal/observability/statsd"
)

const (
	metricHTTPRequests   = "http.requests"
	metricHTTPDuration   = "http.request_duration"
	metricAPICalls       = "api.calls"
	metricAPICallLatency = "api.call_duration"
)

// Request describes one served HTTP request.
type Request struct {
	Method   string
	Path     string
	Status   int
	Duration time.Duration
}

// EmitRequest records a served request tagged by route group and status class.
func EmitRequest(sink statsd.Sink, in Request) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"method": strings.ToUpper(in.Method),
		"route":  RouteGroup(in.Path),
		"status": StatusClass(in.Status),
	}
	sink.Count(metricHTTPRequests, 1, tags)
	sink.Timing(metricHTTPDuration, in.Duration, tags)
}

// APICall describes one outbound call to the positions API. Status is 0 when
// no response was received.
type APICall struct {
	Method   string
	Status   int
	Duration time.Duration
	Err      error
}

// EmitAPICall records an outbound call and its result.
func EmitAPICall(sink statsd.Sink, in APICall) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"method": strings.ToUpper(in.Method),
		"status": StatusClass(in.Status),
	}
	switch {
	case in.Err == nil:
		tags["result"] = "ok"
	case in.Status == 0:
		tags["result"] = "unreachable"
		tags["error_type"] = obserrors.Classify(in.Err)
	default:
		tags["result"] = "rejected"
	}
	sink.Count(metricAPICalls, 1, tags)
	sink.Timing(metricAPICallLatency, in.Duration, tags)
}

// routeGroups are the first path segments the router serves. Anything else
// is reported as "other" so scanners cannot grow the tag set.
var routeGroups = map[string]struct{}{
	"login":     {},
	"register":  {},
	"signup":    {},
	"logout":    {},
	"dashboard": {},
	"static":    {},
	"api":       {},
	"healthz":   {},
}

// RouteGroup reduces a path to its first segment so IDs never become tags.
func RouteGroup(path string) string {
	seg := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	if seg == "" {
		return "root"
	}
	if _, ok := routeGroups[seg]; !ok {
		return "other"
	}
	return seg
}

// StatusClass maps 404 to "4xx"; 0 (no response) maps to "none".
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "none"
	}
	return strconv.Itoa(status/100) + "xx"
}
