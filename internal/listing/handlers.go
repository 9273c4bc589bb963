package listing

// linkareer covers the crawled activity boards that live in the search index:
// outside activities, competitions and (with extra shaping) internships.
type linkareer struct {
	category     Category
	keywordField string
	fields       map[string]string
	projections  map[View][]string
}

func newLinkareer(c Category, keywordField string) linkareer {
	base := []string{"id", "title", "enterprise", "mainImage"}
	return linkareer{
		category:     c,
		keywordField: keywordField,
		fields: map[string]string{
			keywordField: keywordField,
			"title":      "title",
			"enterprise": "enterprise",
			"target":     "target",
			"region":     "region",
			"scale":      "scale",
		},
		projections: map[View][]string{
			ViewList:   concat(base, "view", "scrap", "Dday", keywordField, "target", "region", "scale", "month"),
			ViewBest:   concat(base, "view", "Dday", keywordField),
			ViewRandom: concat(base, "Dday", keywordField),
			ViewDetail: concat(base, "view", "scrap", "Dday", keywordField, "target", "region", "scale", "month", "homePage", "detail"),
		},
	}
}

func (h linkareer) Category() Category { return h.category }
func (h linkareer) Backend() Backend   { return BackendSearch }
func (h linkareer) Collection() string { return string(h.category) }
func (h linkareer) KeywordField() string {
	return h.keywordField
}
func (h linkareer) Sort() Sort { return Sort{Field: "view", Desc: true} }

func (h linkareer) Projection(view View) []string { return h.projections[view] }

func (h linkareer) Field(param string) (string, bool) {
	f, ok := h.fields[param]
	return f, ok
}

// Translate matches any of the requested values: predicates are OR'd.
func (h linkareer) Translate(params map[string]string) Filter {
	return Filter{Logic: LogicOr, Predicates: flatten(collect(h, params, always(MatchContains)))}
}

func (h linkareer) Normalize(rec Record, view View) Listing {
	return project(rec, h.Projection(view))
}

// internHandler hides the raw recruiting period behind a normalized closeDate range.
type internHandler struct {
	linkareer
}

func newIntern() internHandler {
	h := newLinkareer(Intern, "institution")
	base := []string{"id", "title", "enterprise", "mainImage"}
	h.projections = map[View][]string{
		ViewList:   concat(base, "view", "institution", "region", "target", "scale", "closeDate"),
		ViewBest:   concat(base, "view", "scrap", "Dday", "institution", "region"),
		ViewRandom: concat(base, "institution", "closeDate"),
		ViewDetail: concat(base, "view", "scrap", "Dday", "institution", "region", "target", "scale", "month",
			"period", "closeDate", "test", "preferentialTreatment", "homePage", "detail"),
	}
	return internHandler{linkareer: h}
}

func (h internHandler) Normalize(rec Record, view View) Listing {
	out := rec.clone()
	if period, ok := rec["period"].(string); ok {
		out["closeDate"] = SplitPeriod(period)
	}
	return project(out, h.Projection(view))
}

// languageHandler serves exam sessions from the relational store, soonest exam first.
type languageHandler struct{}

var languageProjections = map[View][]string{
	ViewList:   {"id", "title", "classify", "examDate", "closeDate", "view"},
	ViewBest:   {"id", "title", "classify", "examDate", "closeDate", "view"},
	ViewRandom: {"id", "title", "classify", "examDate", "closeDate"},
	ViewDetail: {"id", "title", "test", "classify", "examDate", "closeDate", "resultDate", "homePage", "view"},
}

func (languageHandler) Category() Category   { return Language }
func (languageHandler) Backend() Backend     { return BackendSQL }
func (languageHandler) Collection() string   { return "languages" }
func (languageHandler) KeywordField() string { return "test" }
func (languageHandler) Sort() Sort           { return Sort{Field: "exam_date"} }

func (languageHandler) Projection(view View) []string { return languageProjections[view] }

func (languageHandler) Field(param string) (string, bool) {
	switch param {
	case "test", "classify":
		return param, true
	}
	return "", false
}

// Translate requires an exact match on every value. With a classify filter, two
// predicates must both hold while three or more only need one to hold; without
// classify any predicate qualifies.
func (h languageHandler) Translate(params map[string]string) Filter {
	groups := collect(h, params, always(MatchEquals))
	preds := flatten(groups)
	for i := range preds {
		if preds[i].Field == "test" {
			preds[i].Value = NormalizeTestCode(preds[i].Value)
		}
	}

	logic := LogicOr
	if hasGroup(groups, "classify") && len(preds) < 3 {
		logic = LogicAnd
	}
	return Filter{Logic: logic, Predicates: preds}
}

func (h languageHandler) Normalize(rec Record, view View) Listing {
	out := rec.clone()
	if test, ok := rec["test"].(string); ok {
		out["title"] = LanguageTitle(test)
	}
	for _, key := range []string{"examDate", "closeDate", "resultDate"} {
		if v, ok := rec[key]; ok {
			out[key] = DateToString(v)
		}
	}
	return project(out, h.Projection(view))
}

// qnetHandler serves certification exams joined with their two-level taxonomy.
type qnetHandler struct {
	image string
}

var qnetProjections = map[View][]string{
	ViewList:   {"id", "title", "institution", "mainCategory", "subCategory", "mainImage"},
	ViewBest:   {"id", "title", "institution", "mainCategory", "subCategory", "mainImage", "view", "scrap"},
	ViewRandom: {"id", "title", "institution", "mainCategory", "subCategory", "mainImage", "wtPeriod", "ptPeriod"},
	ViewDetail: {"id", "title", "institution", "summary", "mainCategory", "subCategory", "mainImage", "view", "scrap", "examSchedules"},
}

func (qnetHandler) Category() Category   { return Qnet }
func (qnetHandler) Backend() Backend     { return BackendSQL }
func (qnetHandler) Collection() string   { return "qnets" }
func (qnetHandler) KeywordField() string { return "mainCategory" }
func (qnetHandler) Sort() Sort           { return Sort{Field: "qnets.view", Desc: true} }

func (qnetHandler) Projection(view View) []string { return qnetProjections[view] }

func (qnetHandler) Field(param string) (string, bool) {
	switch param {
	case "mainCategory":
		return "main_categories.keyword", true
	case "subCategory":
		return "sub_categories.keyword", true
	case "title":
		return "qnets.title", true
	case "institution":
		return "qnets.institution", true
	}
	return "", false
}

// Translate requires every parameter to hold; the values of one parameter are
// alternatives of each other.
func (h qnetHandler) Translate(params map[string]string) Filter {
	f := Filter{Logic: LogicAnd}
	for _, g := range collect(h, params, func(param string) Match {
		if param == "mainCategory" || param == "subCategory" {
			return MatchEquals
		}
		return MatchContains
	}) {
		if len(g.preds) == 1 {
			f.Predicates = append(f.Predicates, g.preds[0])
			continue
		}
		f.Groups = append(f.Groups, Filter{Logic: LogicOr, Predicates: g.preds})
	}
	return f
}

func (h qnetHandler) Normalize(rec Record, view View) Listing {
	out := rec.clone()
	out["mainImage"] = h.image
	if view == ViewRandom {
		if first, ok := firstSchedule(rec["examSchedules"]); ok {
			out["wtPeriod"] = first["wtPeriod"]
			out["ptPeriod"] = first["ptPeriod"]
		}
	}
	return project(out, h.Projection(view))
}

func firstSchedule(v any) (map[string]any, bool) {
	switch s := v.(type) {
	case []any:
		if len(s) > 0 {
			m, ok := s[0].(map[string]any)
			return m, ok
		}
	case []map[string]any:
		if len(s) > 0 {
			return s[0], true
		}
	}
	return nil, false
}

// communityHandler only appears as a pseudo-category of the best-of board.
type communityHandler struct{}

var communityProjection = []string{"id", "path", "title", "content", "nickname", "view", "likeCount", "commentCount", "createdAt"}

func (communityHandler) Category() Category   { return Community }
func (communityHandler) Backend() Backend     { return BackendCommunity }
func (communityHandler) Collection() string   { return "communities" }
func (communityHandler) KeywordField() string { return "" }
func (communityHandler) Sort() Sort           { return Sort{Field: "view", Desc: true} }

func (communityHandler) Projection(View) []string { return communityProjection }

func (communityHandler) Field(string) (string, bool) { return "", false }

func (communityHandler) Translate(map[string]string) Filter { return Filter{Logic: LogicOr} }

func (h communityHandler) Normalize(rec Record, view View) Listing {
	return project(rec, h.Projection(view))
}

func concat(base []string, more ...string) []string {
	out := make([]string, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}
