package router

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/model"
)

type keyword struct {
	pattern    *regexp.Regexp
	confidence model.Confidence
}

func direct(expr string) keyword {
	return keyword{regexp.MustCompile(expr), model.ConfidenceHigh}
}

func weak(expr string) keyword {
	return keyword{regexp.MustCompile(expr), model.ConfidenceLow}
}

// category is one row of the keyword table. Keywords are tried in order and
// the first match decides the confidence, so specific patterns come first.
type category struct {
	name       string
	operations []string
	keywords   []keyword
	overview   bool
}

// The keyword table, in evaluation order.
var categories = []category{
	{
		name: "overview",
		operations: []string{
			catalog.OpGetClusterInfo,
			catalog.OpListPods,
			catalog.OpListNodes,
			catalog.OpListNamespaces,
			catalog.OpListServices,
		},
		keywords: []keyword{
			direct(`\b(?:overview|summary|summarize|summarise)\b`),
			direct(`\bstatus of (?:my |the )?cluster\b`),
			direct(`\bcluster (?:status|info|information|health|state)\b`),
			direct(`\bhow (?:is|s) (?:my |the )?cluster\b`),
			direct(`\bhealth of (?:my |the )?cluster\b`),
		},
		overview: true,
	},
	{
		name:       "pods",
		operations: []string{catalog.OpListPods},
		keywords: []keyword{
			direct(`\bpods?\b`),
			direct(`\bcontainers?\b`),
			weak(`\bworkloads?\b`),
		},
	},
	{
		name:       "nodes",
		operations: []string{catalog.OpListNodes},
		keywords: []keyword{
			direct(`\bnodes?\b`),
			weak(`\bworkers?\b`),
			weak(`\bmachines?\b`),
		},
	},
	{
		name:       "namespaces",
		operations: []string{catalog.OpListNamespaces},
		keywords: []keyword{
			direct(`\bnamespaces?\b`),
			weak(`\bns\b`),
		},
	},
	{
		name:       "services",
		operations: []string{catalog.OpListServices},
		keywords: []keyword{
			direct(`\bservices?\b`),
			weak(`\bsvcs?\b`),
			direct(`\bload ?balancers?\b`),
			direct(`\b(?:nodeports?|clusterips?|externalnames?)\b`),
			weak(`\bendpoints?\b`),
			weak(`\bexposed\b`),
		},
	},
}

// KeywordRouter routes with the fixed keyword table. It needs no external
// service and is deterministic.
type KeywordRouter struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

var _ Strategy = (*KeywordRouter)(nil)

// NewKeywordRouter creates a keyword router over cat.
func NewKeywordRouter(cat *catalog.Catalog, logger *slog.Logger) *KeywordRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeywordRouter{catalog: cat, logger: logger}
}

// Name returns the strategy name.
func (r *KeywordRouter) Name() string {
	return StrategyKeyword
}

type match struct {
	category   *category
	confidence model.Confidence
}

// Route evaluates the keyword table against the normalized query.
func (r *KeywordRouter) Route(_ context.Context, req model.QueryRequest) []model.RoutingDecision {
	text := Normalize(req.RawText)
	if text == "" {
		return []model.RoutingDecision{model.NoMatch(StrategyKeyword)}
	}

	p, rest := extract(text)

	var overview *match
	var matches []match
	hasDirect := false
	for i := range categories {
		c := &categories[i]
		for _, kw := range c.keywords {
			if !kw.pattern.MatchString(rest) {
				continue
			}
			m := match{category: c, confidence: kw.confidence}
			if c.overview {
				overview = &m
			} else {
				matches = append(matches, m)
				hasDirect = hasDirect || kw.confidence == model.ConfidenceHigh
			}
			break
		}
	}

	switch {
	case hasDirect:
		direct := matches[:0]
		for _, m := range matches {
			if m.confidence == model.ConfidenceHigh {
				direct = append(direct, m)
			}
		}
		matches = direct
	case overview != nil:
		matches = []match{*overview}
	}

	var decisions []model.RoutingDecision
	for _, m := range matches {
		for _, name := range m.category.operations {
			op, err := r.catalog.Get(name)
			if err != nil {
				r.logger.Warn("keyword table references unknown operation", "operation", name, "error", err)
				continue
			}
			decisions = append(decisions, model.RoutingDecision{
				Operation:  op,
				Arguments:  p.arguments(name),
				Confidence: m.confidence,
				Strategy:   StrategyKeyword,
			})
		}
	}
	if len(decisions) == 0 {
		r.logger.Debug("no keyword matched", "query", text)
		return []model.RoutingDecision{model.NoMatch(StrategyKeyword)}
	}
	return decisions
}
