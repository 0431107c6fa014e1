package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"crewplan/internal/config"
	"crewplan/internal/db"
	"crewplan/internal/engine"
	"crewplan/internal/migrate"
	"crewplan/internal/repo"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, config.Default())
	eng.Now = func() time.Time { return time.Date(2024, 7, 15, 10, 30, 0, 0, time.UTC) }
	return testEnv{Engine: eng, Ctx: context.Background()}
}

func seedMember(t *testing.T, env testEnv, hours float64) string {
	t.Helper()
	m, err := env.Engine.CreateMember(env.Ctx, engine.MemberCreateOptions{
		Name:                "Alice",
		WorkingHoursPerWeek: hours,
		ActorID:             "tester",
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m.ID
}

func seedProject(t *testing.T, env testEnv, name string) string {
	t.Helper()
	p, err := env.Engine.CreateProject(env.Ctx, "", name, "", "tester")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p.ID
}

func TestCreateMemberDefaultsWorkingHours(t *testing.T) {
	env := newTestEnv(t)
	m, err := env.Engine.CreateMember(env.Ctx, engine.MemberCreateOptions{Name: "Bob", ActorID: "tester"})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if m.WorkingHoursPerWeek != 40 {
		t.Fatalf("expected default 40h/week, got %v", m.WorkingHoursPerWeek)
	}
}

func TestCreateEngagementWithinCapacity(t *testing.T) {
	env := newTestEnv(t)
	memberID := seedMember(t, env, 40)
	projectID := seedProject(t, env, "apollo")

	eng, verdict, err := env.Engine.CreateEngagement(env.Ctx, engine.EngagementCreateOptions{
		MemberID:     memberID,
		ProjectID:    projectID,
		HoursPerWeek: 20,
		StartDate:    "2024-07-01",
		ActorID:      "tester",
	})
	if err != nil {
		t.Fatalf("create engagement: %v", err)
	}
	if !verdict.Valid {
		t.Fatalf("expected valid verdict, got errors %v", verdict.Errors)
	}
	if !eng.IsActive || eng.EndDate != nil {
		t.Fatalf("expected active open-ended engagement, got %+v", eng)
	}
}

func TestCreateEngagementRejectedOverCapacity(t *testing.T) {
	env := newTestEnv(t)
	memberID := seedMember(t, env, 40)
	p1 := seedProject(t, env, "apollo")
	p2 := seedProject(t, env, "borealis")

	if _, _, err := env.Engine.CreateEngagement(env.Ctx, engine.EngagementCreateOptions{
		MemberID: memberID, ProjectID: p1, HoursPerWeek: 30, StartDate: "2024-07-01", ActorID: "tester",
	}); err != nil {
		t.Fatalf("seed engagement: %v", err)
	}

	_, _, err := env.Engine.CreateEngagement(env.Ctx, engine.EngagementCreateOptions{
		MemberID: memberID, ProjectID: p2, HoursPerWeek: 15, StartDate: "2024-07-01", ActorID: "tester",
	})
	var rejected *engine.EngagementRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected EngagementRejectedError, got %v", err)
	}
	if rejected.Result.AvailableHours != 10 {
		t.Fatalf("expected 10h available in verdict, got %v", rejected.Result.AvailableHours)
	}

	// nothing was written
	engs, err := env.Engine.Repo.ListEngagementsByMember(env.Ctx, memberID)
	if err != nil {
		t.Fatalf("list engagements: %v", err)
	}
	if len(engs) != 1 {
		t.Fatalf("expected rejected engagement not persisted, have %d", len(engs))
	}
}

func TestCreateEngagementForcedOverCapacity(t *testing.T) {
	env := newTestEnv(t)
	memberID := seedMember(t, env, 40)
	p1 := seedProject(t, env, "apollo")
	p2 := seedProject(t, env, "borealis")

	if _, _, err := env.Engine.CreateEngagement(env.Ctx, engine.EngagementCreateOptions{
		MemberID: memberID, ProjectID: p1, HoursPerWeek: 30, StartDate: "2024-07-01", ActorID: "tester",
	}); err != nil {
		t.Fatalf("seed engagement: %v", err)
	}
	eng, verdict, err := env.Engine.CreateEngagement(env.Ctx, engine.EngagementCreateOptions{
		MemberID: memberID, ProjectID: p2, HoursPerWeek: 15, StartDate: "2024-07-01", ActorID: "tester", Force: true,
	})
	if err != nil {
		t.Fatalf("forced create: %v", err)
	}
	if verdict.Valid {
		t.Fatal("expected invalid verdict alongside forced write")
	}
	if _, err := env.Engine.Repo.GetEngagement(env.Ctx, eng.ID); err != nil {
		t.Fatalf("forced engagement not persisted: %v", err)
	}
}

func TestUpdateEngagementExcludesSelf(t *testing.T) {
	env := newTestEnv(t)
	memberID := seedMember(t, env, 40)
	projectID := seedProject(t, env, "apollo")

	eng, _, err := env.Engine.CreateEngagement(env.Ctx, engine.EngagementCreateOptions{
		MemberID: memberID, ProjectID: projectID, HoursPerWeek: 40, StartDate: "2024-07-01", ActorID: "tester",
	})
	if err != nil {
		t.Fatalf("create engagement: %v", err)
	}
	// shrinking a full-capacity engagement must not conflict with itself
	hours := 35.0
	updated, verdict, err := env.Engine.UpdateEngagement(env.Ctx, engine.EngagementUpdateOptions{
		ID: eng.ID, HoursPerWeek: &hours, ActorID: "tester",
	})
	if err != nil {
		t.Fatalf("update engagement: %v", err)
	}
	if !verdict.Valid {
		t.Fatalf("expected valid verdict, got errors %v", verdict.Errors)
	}
	if updated.HoursPerWeek != 35 {
		t.Fatalf("expected 35h, got %v", updated.HoursPerWeek)
	}
}

func TestEndEngagementFreesCapacity(t *testing.T) {
	env := newTestEnv(t)
	memberID := seedMember(t, env, 40)
	projectID := seedProject(t, env, "apollo")

	eng, _, err := env.Engine.CreateEngagement(env.Ctx, engine.EngagementCreateOptions{
		MemberID: memberID, ProjectID: projectID, HoursPerWeek: 40, StartDate: "2024-07-01", ActorID: "tester",
	})
	if err != nil {
		t.Fatalf("create engagement: %v", err)
	}
	ended, err := env.Engine.EndEngagement(env.Ctx, eng.ID, "", "tester")
	if err != nil {
		t.Fatalf("end engagement: %v", err)
	}
	if ended.IsActive {
		t.Fatal("expected engagement inactive after ending")
	}
	if ended.EndDate == nil || *ended.EndDate != "2024-07-15" {
		t.Fatalf("expected end date from engine clock, got %v", ended.EndDate)
	}

	res, err := env.Engine.MemberAvailability(env.Ctx, memberID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if res.Availability.EngagedHours != 0 || res.Availability.AvailableHours != 40 {
		t.Fatalf("expected full availability after ending, got %+v", res.Availability)
	}
}

func TestTimeOffLifecycle(t *testing.T) {
	env := newTestEnv(t)
	memberID := seedMember(t, env, 40)

	entry, verdict, err := env.Engine.RequestTimeOff(env.Ctx, engine.TimeOffRequestOptions{
		MemberID:  memberID,
		Type:      "vacation",
		StartDate: "2024-08-05",
		EndDate:   "2024-08-09",
		ActorID:   "tester",
	})
	if err != nil {
		t.Fatalf("request time off: %v", err)
	}
	if !verdict.Valid || entry.Status != "pending" {
		t.Fatalf("expected valid pending entry, got %+v / %+v", verdict, entry)
	}

	// a second overlapping request is blocked while the first is pending
	_, _, err = env.Engine.RequestTimeOff(env.Ctx, engine.TimeOffRequestOptions{
		MemberID:  memberID,
		Type:      "vacation",
		StartDate: "2024-08-08",
		EndDate:   "2024-08-12",
		ActorID:   "tester",
	})
	var rejected *engine.TimeOffRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected TimeOffRejectedError, got %v", err)
	}

	approved, err := env.Engine.SetTimeOffStatus(env.Ctx, entry.ID, "approved", "manager")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != "approved" {
		t.Fatalf("expected approved, got %s", approved.Status)
	}

	// approved is terminal
	if _, err := env.Engine.SetTimeOffStatus(env.Ctx, entry.ID, "rejected", "manager"); err == nil {
		t.Fatal("expected transition error from approved")
	}
}

func TestSetTimeOffStatusRejectsUnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	memberID := seedMember(t, env, 40)
	entry, _, err := env.Engine.RequestTimeOff(env.Ctx, engine.TimeOffRequestOptions{
		MemberID: memberID, Type: "sick_leave", StartDate: "2024-07-20", EndDate: "2024-07-21", ActorID: "tester",
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := env.Engine.SetTimeOffStatus(env.Ctx, entry.ID, "pending", "manager"); err == nil {
		t.Fatal("expected error moving pending to pending")
	}
}

func TestMemberAvailabilityCountsApprovedOnly(t *testing.T) {
	env := newTestEnv(t)
	memberID := seedMember(t, env, 40)

	entry, _, err := env.Engine.RequestTimeOff(env.Ctx, engine.TimeOffRequestOptions{
		MemberID: memberID, Type: "vacation", StartDate: "2024-07-22", EndDate: "2024-07-26", ActorID: "tester",
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	res, err := env.Engine.MemberAvailability(env.Ctx, memberID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if res.Availability.TimeOffDaysThisMonth != 0 {
		t.Fatalf("pending entry must not count, got %d days", res.Availability.TimeOffDaysThisMonth)
	}

	if _, err := env.Engine.SetTimeOffStatus(env.Ctx, entry.ID, "approved", "manager"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	res, err = env.Engine.MemberAvailability(env.Ctx, memberID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if res.Availability.TimeOffDaysThisMonth != 5 {
		t.Fatalf("expected 5 approved days in July, got %d", res.Availability.TimeOffDaysThisMonth)
	}
}

func TestMemberPeriodAvailability(t *testing.T) {
	env := newTestEnv(t)
	memberID := seedMember(t, env, 40)
	projectID := seedProject(t, env, "apollo")

	if _, _, err := env.Engine.CreateEngagement(env.Ctx, engine.EngagementCreateOptions{
		MemberID: memberID, ProjectID: projectID, HoursPerWeek: 20, StartDate: "2024-07-01", ActorID: "tester",
	}); err != nil {
		t.Fatalf("create engagement: %v", err)
	}

	// Mon 2024-07-01 .. Fri 2024-07-05
	sum, err := env.Engine.MemberPeriodAvailability(env.Ctx, memberID, "2024-07-01", "2024-07-05")
	if err != nil {
		t.Fatalf("period availability: %v", err)
	}
	if sum.WorkingDays != 5 || sum.TotalHours != 40 || sum.EngagedHours != 20 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.EffectiveAvailableHours != 20 {
		t.Fatalf("expected 20h effective, got %v", sum.EffectiveAvailableHours)
	}
}

func TestTeamAvailabilityOrderedByName(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"Zoe", "Ann"} {
		if _, err := env.Engine.CreateMember(env.Ctx, engine.MemberCreateOptions{Name: name, ActorID: "tester"}); err != nil {
			t.Fatalf("create member %s: %v", name, err)
		}
	}
	team, err := env.Engine.TeamAvailability(env.Ctx)
	if err != nil {
		t.Fatalf("team availability: %v", err)
	}
	if len(team) != 2 || team[0].Member.Name != "Ann" || team[1].Member.Name != "Zoe" {
		t.Fatalf("unexpected order: %+v", team)
	}
}

func TestEventsRecorded(t *testing.T) {
	env := newTestEnv(t)
	memberID := seedMember(t, env, 40)
	projectID := seedProject(t, env, "apollo")
	if _, _, err := env.Engine.CreateEngagement(env.Ctx, engine.EngagementCreateOptions{
		MemberID: memberID, ProjectID: projectID, HoursPerWeek: 10, StartDate: "2024-07-01", ActorID: "tester",
	}); err != nil {
		t.Fatalf("create engagement: %v", err)
	}

	evts, err := env.Engine.Repo.LatestEvents(env.Ctx, 0, "", "", "")
	if err != nil {
		t.Fatalf("latest events: %v", err)
	}
	types := map[string]bool{}
	for _, e := range evts {
		types[e.Type] = true
	}
	for _, want := range []string{"member.created", "project.created", "engagement.created"} {
		if !types[want] {
			t.Fatalf("missing event %s in %v", want, types)
		}
	}
}

func TestGetMemberNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.MemberAvailability(env.Ctx, "nope")
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
