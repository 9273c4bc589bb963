package repository

import (
	"context"
	"testing"
	"time"

	"careerhub/internal/listing"
	"careerhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var registry = listing.NewRegistry(listing.Options{QnetImage: "https://cdn.example.com/qnet.png"})

func seedExams(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()
	exams := NewExamRepository(db)

	for i, l := range []models.Language{
		{Test: "toeic", Classify: "listening", ExamDate: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)},
		{Test: "toeic", Classify: "speaking", ExamDate: time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)},
		{Test: "teps", Classify: "listening", ExamDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	} {
		l := l
		l.View = i
		require.NoError(t, exams.CreateLanguage(ctx, &l))
	}

	sw, err := exams.GetOrCreateSubCategory(ctx, "IT", "Software")
	require.NoError(t, err)
	net, err := exams.GetOrCreateSubCategory(ctx, "IT", "Network")
	require.NoError(t, err)
	assert.Equal(t, sw.MainCategoryID, net.MainCategoryID)
	chem, err := exams.GetOrCreateSubCategory(ctx, "Chemistry", "Chemical Analysis")
	require.NoError(t, err)

	for _, q := range []models.Qnet{
		{Title: "Information Processing Engineer", Institution: "HRDK", SubCategoryID: sw.ID, View: 30,
			ExamSchedules: []models.ExamSchedule{{Turn: "1", WtPeriod: "2024.01.01~2024.01.05", PtPeriod: "2024.02.01~2024.02.05"}}},
		{Title: "Network Administrator", Institution: "KAIT", SubCategoryID: net.ID, View: 20},
		{Title: "Chemical Analyst", Institution: "HRDK", SubCategoryID: chem.ID, View: 10},
	} {
		q := q
		require.NoError(t, exams.CreateQnet(ctx, &q))
	}
}

func TestSQLStore_FindQnetJoinsTaxonomy(t *testing.T) {
	db := setupSQLiteDB(t)
	seedExams(t, db)
	store := NewSQLStore(db)
	h := registry.Must(listing.Qnet)
	ctx := context.Background()

	recs, err := store.Find(ctx, h, ListingQuery{Filter: listing.Translate(h, map[string]string{"mainCategory": "IT"}), Sort: h.Sort(), Limit: listing.PageSize})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Information Processing Engineer", recs[0]["title"])
	assert.Equal(t, "IT", recs[0]["mainCategory"])
	assert.Equal(t, "Software", recs[0]["subCategory"])

	f := listing.Translate(h, map[string]string{"mainCategory": "IT,Chemistry", "institution": "hrdk"})
	n, err := store.Count(ctx, h, f)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	recs, err = store.Find(ctx, h, ListingQuery{Filter: listing.Filter{Logic: listing.LogicAnd}, Sort: h.Sort(), Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Network Administrator", recs[0]["title"])
}

func TestSQLStore_LanguageClassifyLogic(t *testing.T) {
	db := setupSQLiteDB(t)
	seedExams(t, db)
	store := NewSQLStore(db)
	h := registry.Must(listing.Language)
	ctx := context.Background()

	and, err := store.Count(ctx, h, listing.Translate(h, map[string]string{"test": "toeic", "classify": "listening"}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), and)

	or, err := store.Count(ctx, h, listing.Translate(h, map[string]string{"test": "toeic,teps", "classify": "speaking"}))
	require.NoError(t, err)
	assert.Equal(t, int64(3), or)

	recs, err := store.Find(ctx, h, ListingQuery{Filter: listing.Translate(h, nil), Sort: h.Sort(), Limit: listing.PageSize})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "speaking", recs[0]["classify"], "soonest exam first")
}

func TestSQLStore_FindByIDAndIncrementView(t *testing.T) {
	db := setupSQLiteDB(t)
	seedExams(t, db)
	store := NewSQLStore(db)
	ctx := context.Background()

	qnet := registry.Must(listing.Qnet)
	for want := 31; want <= 33; want++ {
		rec, err := store.FindByIDAndIncrementView(ctx, qnet, "1")
		require.NoError(t, err)
		assert.Equal(t, want, rec["view"])
		assert.Equal(t, "Software", rec["subCategory"])
	}

	lang := registry.Must(listing.Language)
	rec, err := store.FindByIDAndIncrementView(ctx, lang, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, rec["view"])

	for _, id := range []string{"404", "abc"} {
		_, err = store.FindByIDAndIncrementView(ctx, lang, id)
		assert.True(t, models.IsCode(err, models.CodeNotFound), id)
	}
}

func TestSQLStore_Sample(t *testing.T) {
	db := setupSQLiteDB(t)
	store := NewSQLStore(db)
	h := registry.Must(listing.Qnet)
	ctx := context.Background()

	_, ok, err := store.Sample(ctx, h)
	require.NoError(t, err)
	assert.False(t, ok)

	seedExams(t, db)
	rec, ok, err := store.Sample(ctx, h)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, rec["title"])
	assert.NotEmpty(t, rec["mainCategory"])
}

func TestSQLStore_RejectsSearchCategories(t *testing.T) {
	store := NewSQLStore(setupSQLiteDB(t))
	_, err := store.Count(context.Background(), registry.Must(listing.Outside), listing.Filter{})
	assert.ErrorIs(t, err, ErrUnsupportedCategory)
}
