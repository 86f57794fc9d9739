package router

import (
	"regexp"

	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/rhobs/kubeqa/pkg/catalog"
)

// params holds everything the keyword router pulled out of a query.
type params struct {
	namespace   string
	podPhase    string
	problems    bool
	nodeStatus  string
	serviceType string
	counting    bool
}

const nsName = `([a-z0-9][a-z0-9-]*)`

// Namespace captures, most specific first. Each consumes the namespace word
// so it does not also route to list_namespaces.
var namespaceCaptures = []*regexp.Regexp{
	regexp.MustCompile(`\bin (?:the )?(?:namespace|ns) (?:called |named )?` + nsName),
	regexp.MustCompile(`\bin (?:the )?` + nsName + ` (?:namespace|ns)\b`),
	regexp.MustCompile(`(?:^|\s)-n ` + nsName),
	regexp.MustCompile(`\b(?:namespace|ns) (?:called |named )?` + nsName),
}

// Words that follow "namespace" in ordinary questions and are never names.
var notNamespaces = map[string]bool{
	"a": true, "all": true, "an": true, "and": true, "any": true, "are": true,
	"called": true, "count": true, "details": true, "do": true, "does": true,
	"each": true, "every": true, "exist": true, "exists": true, "for": true,
	"has": true, "have": true, "info": true, "information": true, "is": true,
	"list": true, "my": true, "named": true, "names": true, "of": true,
	"or": true, "our": true, "overview": true, "please": true, "status": true,
	"summary": true, "that": true, "the": true, "this": true, "with": true,
	"which": true,
}

var (
	negatedState = regexp.MustCompile(`\bnot (?:ready|running)\b|\bnotready\b`)
	counting     = regexp.MustCompile(`\b(?:how many|count|number of)\b`)
	problems     = regexp.MustCompile(`\b(?:crash\w*|restart\w*|unhealthy|broken|problems?|problematic|issues?|not ready|not running|notready)\b`)
	nodeNotReady = regexp.MustCompile(`\b(?:not ready|notready)\b`)
	nodeReady    = regexp.MustCompile(`\bready\b`)
)

type valuePattern struct {
	pattern *regexp.Regexp
	value   string
}

// Pod phase keywords in priority order.
var podPhases = []valuePattern{
	{regexp.MustCompile(`\b(?:failed|failing|failure|failures|error|errors|errored)\b`), "Failed"},
	{regexp.MustCompile(`\bpending\b`), "Pending"},
	{regexp.MustCompile(`\b(?:succeeded|completed)\b`), "Succeeded"},
	{regexp.MustCompile(`\bunknown\b`), "Unknown"},
	{regexp.MustCompile(`\brunning\b`), "Running"},
}

var serviceTypes = []valuePattern{
	{regexp.MustCompile(`\bload ?balancers?\b`), "LoadBalancer"},
	{regexp.MustCompile(`\bnodeports?\b`), "NodePort"},
	{regexp.MustCompile(`\bclusterips?\b`), "ClusterIP"},
	{regexp.MustCompile(`\bexternalnames?\b`), "ExternalName"},
}

// extract pulls parameters out of normalized text. It returns the text with
// the namespace capture removed, which is what category matching runs on.
func extract(text string) (params, string) {
	var p params
	rest := text

	for _, re := range namespaceCaptures {
		m := re.FindStringSubmatchIndex(rest)
		if m == nil {
			continue
		}
		name := rest[m[2]:m[3]]
		if notNamespaces[name] || len(validation.IsDNS1123Label(name)) > 0 {
			continue
		}
		p.namespace = name
		rest = rest[:m[0]] + " " + rest[m[1]:]
		break
	}

	p.counting = counting.MatchString(rest)
	p.problems = problems.MatchString(rest)

	// "not running" and "not ready" must not read as "running" or "ready".
	positive := negatedState.ReplaceAllString(rest, " ")
	if !p.counting {
		for _, vp := range podPhases {
			if vp.pattern.MatchString(positive) {
				p.podPhase = vp.value
				break
			}
		}
		switch {
		case nodeNotReady.MatchString(rest):
			p.nodeStatus = "NotReady"
		case nodeReady.MatchString(positive):
			p.nodeStatus = "Ready"
		}
	}
	for _, vp := range serviceTypes {
		if vp.pattern.MatchString(rest) {
			p.serviceType = vp.value
			break
		}
	}
	return p, rest
}

// arguments returns the subset of p that the operation accepts.
func (p params) arguments(operation string) catalog.Arguments {
	args := catalog.Arguments{}
	switch operation {
	case catalog.OpListPods:
		if p.namespace != "" {
			args["namespace"] = p.namespace
		}
		if p.podPhase != "" {
			args["status"] = p.podPhase
		}
		if p.problems {
			args["problems_only"] = true
		}
	case catalog.OpListNodes:
		if p.nodeStatus != "" {
			args["status"] = p.nodeStatus
		}
	case catalog.OpListServices:
		if p.namespace != "" {
			args["namespace"] = p.namespace
		}
		if p.serviceType != "" {
			args["type"] = p.serviceType
		}
	}
	return args
}
