// Package seed provides helpers to create demo data for the application
// database and search index. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"careerhub/internal/listing"
	"careerhub/internal/models"
	"careerhub/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var (
	boards = []string{"free", "jobs", "study", "interview", "review"}

	fields    = []string{"design", "marketing", "planning", "IT", "video", "photo", "idea", "science"}
	targets   = []string{"university students", "graduates", "anyone", "high school students"}
	regions   = []string{"Seoul", "Busan", "Incheon", "Daegu", "nationwide", "online"}
	internOrg = []string{"public institution", "large company", "startup", "foreign company", "mid-size company"}

	languageTests = []string{"toeic", "toeicSpeaking", "teps", "opic", "jpt", "hsk"}
	classifies    = []string{"regular", "special", "listening", "speaking"}

	qnetTaxonomy = map[string][]string{
		"IT":          {"Software", "Network", "Security"},
		"Chemistry":   {"Chemical Analysis", "Chemical Engineering"},
		"Electricity": {"Power", "Electronics"},
		"Cooking":     {"Korean Cuisine", "Baking"},
	}
)

// Factory builds domain entities. Relational entities are persisted directly;
// listing inputs are returned for the ingest service to store.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rand: rand.New(rand.NewSource(seed)), nextID: 1000}
}

func (f *Factory) pick(values []string) string {
	return values[f.rand.Intn(len(values))]
}

// pastTime spreads timestamps over the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rand.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rand.Intn(24))*time.Hour +
		time.Duration(f.rand.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Email:    gofakeit.Email(),
		Nickname: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Nickname)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildCommunityPost constructs a community post by user on a random board
// without persisting it.
func (f *Factory) BuildCommunityPost(user *models.User, overrides ...func(*models.Community)) *models.Community {
	post := &models.Community{
		UserID:  user.ID,
		Path:    f.pick(boards),
		Title:   strings.TrimSuffix(gofakeit.Sentence(5), "."),
		Content: gofakeit.Paragraph(1, 3, 8, "\n"),
		View:    f.rand.Intn(200),
	}
	post.CreatedAt = f.pastTime()
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreateCommunityPostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreateCommunityPostsBatch(posts []*models.Community) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreateCommunityPostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// BuildComment constructs a comment by user on post.
func (f *Factory) BuildComment(user *models.User, post *models.Community) *models.Comment {
	return &models.Comment{
		UserID:      user.ID,
		CommunityID: post.ID,
		Comment:     gofakeit.Sentence(8),
	}
}

// BuildLinkareer constructs the crawled document of an outside, intern or
// competition post.
func (f *Factory) BuildLinkareer(c listing.Category) service.LinkareerInput {
	deadline := f.rand.Intn(30)
	start := time.Now().AddDate(0, 0, -f.rand.Intn(20))
	end := start.AddDate(0, 0, 7+f.rand.Intn(30))

	data := map[string]any{
		"title":      strings.TrimSuffix(gofakeit.Sentence(4), "."),
		"enterprise": gofakeit.Company(),
		"mainImage":  fmt.Sprintf("https://picsum.photos/seed/%s/600/400", gofakeit.UUID()),
		"Dday":       fmt.Sprintf("D-%d", deadline),
		"target":     f.pick(targets),
		"region":     f.pick(regions),
		"homePage":   gofakeit.URL(),
		"detail":     gofakeit.Paragraph(2, 4, 10, "\n"),
	}
	in := service.LinkareerInput{Category: string(c), Data: data}

	switch c {
	case listing.Intern:
		data["institution"] = f.pick(internOrg)
		data["period"] = fmt.Sprintf("%s ~ %s", start.Format("2006.01.02"), end.Format("2006.01.02"))
		data["test"] = gofakeit.Sentence(3)
		data["preferentialTreatment"] = gofakeit.Sentence(4)
	case listing.Competition:
		data["interests"] = f.pick(fields)
		in.Scale = (1 + f.rand.Intn(50)) * 100
	default:
		data["field"] = f.pick(fields)
		in.Month = 1 + f.rand.Intn(6)
	}
	return in
}

// BuildLanguage constructs a language exam session in the coming months.
func (f *Factory) BuildLanguage() service.LanguageInput {
	exam := time.Now().AddDate(0, 0, 7+f.rand.Intn(120)).Truncate(24 * time.Hour)
	return service.LanguageInput{
		Test:       f.pick(languageTests),
		Classify:   f.pick(classifies),
		ExamDate:   exam,
		CloseDate:  exam.AddDate(0, 0, -7),
		ResultDate: exam.AddDate(0, 0, 14),
		HomePage:   gofakeit.URL(),
	}
}

// BuildQnet constructs a certification exam with a few exam rounds.
func (f *Factory) BuildQnet() service.QnetInput {
	mains := make([]string, 0, len(qnetTaxonomy))
	for k := range qnetTaxonomy {
		mains = append(mains, k)
	}
	// Map order is random; sort for reproducible picks under a fixed seed.
	sort.Strings(mains)
	main := f.pick(mains)
	sub := f.pick(qnetTaxonomy[main])

	rounds := 1 + f.rand.Intn(3)
	schedules := make([]models.ExamSchedule, 0, rounds)
	day := time.Now().AddDate(0, 1, 0)
	for i := 1; i <= rounds; i++ {
		wt := day.AddDate(0, (i-1)*3, 0)
		pt := wt.AddDate(0, 1, 0)
		schedules = append(schedules, models.ExamSchedule{
			Turn:      fmt.Sprintf("%d", i),
			WtReceipt: fmt.Sprintf("%s~%s", wt.AddDate(0, 0, -21).Format("2006.01.02"), wt.AddDate(0, 0, -17).Format("2006.01.02")),
			WtPeriod:  fmt.Sprintf("%s~%s", wt.Format("2006.01.02"), wt.AddDate(0, 0, 4).Format("2006.01.02")),
			PtReceipt: fmt.Sprintf("%s~%s", pt.AddDate(0, 0, -14).Format("2006.01.02"), pt.AddDate(0, 0, -10).Format("2006.01.02")),
			PtPeriod:  fmt.Sprintf("%s~%s", pt.Format("2006.01.02"), pt.AddDate(0, 0, 6).Format("2006.01.02")),
			ResultDay: pt.AddDate(0, 0, 30).Format("2006.01.02"),
		})
	}

	return service.QnetInput{
		MainCategory:  main,
		SubCategory:   sub,
		Title:         fmt.Sprintf("%s %s Technician", sub, gofakeit.JobLevel()),
		Institution:   "Human Resources Development Service of Korea",
		Summary:       gofakeit.Paragraph(1, 2, 12, " "),
		ExamSchedules: schedules,
	}
}
