package cli

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/stemsi/cyberassess-backend/internal/app"
	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/scoring"
	"github.com/stemsi/cyberassess-backend/internal/service"
)

// discard drops notifications for seeded records.
type discard struct{}

func (discard) Notify(model.Submission) {}

var demoQuestions = []model.QuestionDetail{
	{ID: "gov-1", Text: "Is there a documented information security policy?", Category: "Governance", Area: "Policy"},
	{ID: "gov-2", Text: "Are security roles and responsibilities assigned?", Category: "Governance", Area: "Policy"},
	{ID: "iam-1", Text: "Is multi-factor authentication enforced for remote access?", Category: "Identity", Area: "Access"},
	{ID: "iam-2", Text: "Are access rights reviewed periodically?", Category: "Identity", Area: "Access"},
	{ID: "ops-1", Text: "Are security patches applied within a defined time frame?", Category: "Operations", Area: "Systems"},
	{ID: "ops-2", Text: "Are backups tested by restoring them?", Category: "Operations", Area: "Systems"},
	{ID: "inc-1", Text: "Is there an incident response plan?", Category: "Incident response", Area: "Response"},
	{ID: "inc-2", Text: "Are security events logged and monitored?", Category: "Incident response", Area: "Response"},
}

func newSeedCmd() *cobra.Command {
	var (
		count int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Record demo assessments through the submission pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			return e.withStores(cmd.Context(), func(st *app.Stores) error {
				if err := st.EnsureIndexes(cmd.Context()); err != nil {
					return err
				}
				svc := service.NewSubmissionService(st.Submissions, discard{}, service.DefaultRetryPolicy(), e.log)
				rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

				created, existing := 0, 0
				for i := 0; i < count; i++ {
					res, err := svc.Submit(cmd.Context(), demoSubmission(rng, i))
					if err != nil {
						return fmt.Errorf("seed submission %d: %w", i, err)
					}
					if res.Status == model.SubmitCreated {
						created++
					} else {
						existing++
					}
				}
				cmd.Printf("Seeded %d assessments (%d already present)\n", created, existing)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 25, "number of assessments")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

var demoEnvironments = []string{"Head office", "Payments platform", "Customer portal", "Factory network"}

func demoSubmission(rng *rand.Rand, i int) model.Submission {
	answers := make(map[string]string, len(demoQuestions))
	for _, q := range demoQuestions {
		// Mostly scorable answers with the occasional "don't know".
		code := scoring.AllCodes[rng.IntN(5)]
		if rng.IntN(10) == 0 {
			code = scoring.CodeDontKnow
		}
		answers[q.ID] = string(code)
	}

	started := time.Now().Add(-time.Duration(5+rng.IntN(25)) * time.Minute)
	return model.Submission{
		Respondent: model.Respondent{
			Name:    fmt.Sprintf("Demo User %02d", i+1),
			Email:   fmt.Sprintf("demo%02d@example.com", i+1),
			Role:    "IT Manager",
			Country: "FR",
		},
		Environment: model.Environment{
			UniqueName: demoEnvironments[i%len(demoEnvironments)],
			Type:       "Production",
		},
		Answers:            answers,
		SelectedCategories: []string{"Governance", "Identity", "Operations", "Incident response"},
		SelectedAreas:      []string{"Policy", "Access", "Systems", "Response"},
		QuestionDetails:    demoQuestions,
		TotalQuestions:     len(demoQuestions),
		CompletedQuestions: len(answers),
		Metadata:           model.SubmissionMetadata{Language: "en", StartedAt: &started},
	}
}
