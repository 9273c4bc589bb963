package seed

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"careerhub/internal/listing"
	"careerhub/internal/models"
)

func TestBuildCommunityPost_TimestampsWithinMaxDays(t *testing.T) {
	opts := Options{DryRun: true, MaxDays: 30}
	f := NewFactory(nil, opts)
	user := &models.User{ID: 1}

	p := f.BuildCommunityPost(user)
	if p.UserID != 1 || p.Title == "" || p.Content == "" {
		t.Fatalf("incomplete post: %+v", p)
	}
	if time.Since(p.CreatedAt) > (time.Duration(opts.MaxDays)+1)*24*time.Hour {
		t.Fatalf("created_at too old: %v", p.CreatedAt)
	}
}

func TestBuildLinkareer_PerCategoryFields(t *testing.T) {
	f := NewFactory(nil, Options{RandSeed: 1})

	outside := f.BuildLinkareer(listing.Outside)
	if outside.Data["field"] == nil || outside.Month <= 0 {
		t.Fatalf("outside needs field and month: %+v", outside)
	}
	if _, err := url.ParseRequestURI(outside.Data["homePage"].(string)); err != nil {
		t.Fatalf("invalid home page: %v", err)
	}

	competition := f.BuildLinkareer(listing.Competition)
	if competition.Data["interests"] == nil || competition.Scale <= 0 {
		t.Fatalf("competition needs interests and scale: %+v", competition)
	}

	intern := f.BuildLinkareer(listing.Intern)
	period, _ := intern.Data["period"].(string)
	if !strings.Contains(period, " ~ ") {
		t.Fatalf("unexpected intern period: %q", period)
	}
}

func TestBuildQnet_SchedulesAndTaxonomy(t *testing.T) {
	f := NewFactory(nil, Options{RandSeed: 3})
	q := f.BuildQnet()

	subs, ok := qnetTaxonomy[q.MainCategory]
	if !ok {
		t.Fatalf("unknown main category %q", q.MainCategory)
	}
	found := false
	for _, s := range subs {
		found = found || s == q.SubCategory
	}
	if !found {
		t.Fatalf("sub category %q not under %q", q.SubCategory, q.MainCategory)
	}
	if len(q.ExamSchedules) == 0 || q.ExamSchedules[0].WtPeriod == "" {
		t.Fatalf("missing exam schedules: %+v", q.ExamSchedules)
	}
}

func TestBuildLanguage_DatesOrdered(t *testing.T) {
	l := NewFactory(nil, Options{RandSeed: 5}).BuildLanguage()
	if !l.CloseDate.Before(l.ExamDate) || !l.ResultDate.After(l.ExamDate) {
		t.Fatalf("dates out of order: %+v", l)
	}
}
