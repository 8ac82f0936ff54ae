package service

import (
	"context"

	"go.uber.org/zap"

	"study-planner/internal/metrics"
	"study-planner/internal/repository"
)

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	PlannersChecked   int
	PlannersRepaired  int
	CalendarsChecked  int
	CalendarsRepaired int
	StudiesChecked    int
	StudiesRepaired   int
}

// ReconcileService recomputes planner, calendar and study counters from their plans
// and memberships, and rewrites any that drifted.
type ReconcileService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewReconcileService(store *repository.Store, log *zap.Logger) *ReconcileService {
	return &ReconcileService{store: store, log: log}
}

type counterPair struct {
	studyTime int64
	completed int64
}

func (s *ReconcileService) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		totals, err := tx.Plans.TotalsByPlanner(ctx)
		if err != nil {
			return err
		}
		byPlanner := make(map[uint]counterPair, len(totals))
		for _, t := range totals {
			byPlanner[t.PlannerID] = counterPair{studyTime: t.StudyTime, completed: t.Completed}
		}

		planners, err := tx.Planners.ListAll(ctx)
		if err != nil {
			return err
		}
		byCalendar := make(map[uint]counterPair)
		for _, p := range planners {
			want := byPlanner[p.ID]
			sum := byCalendar[p.CalendarID]
			sum.studyTime += want.studyTime
			sum.completed += want.completed
			byCalendar[p.CalendarID] = sum

			report.PlannersChecked++
			if p.DailyStudyTime == want.studyTime && p.DailyCompletedNum == want.completed {
				continue
			}
			s.log.Warn("planner counters drifted",
				zap.Uint("planner_id", p.ID),
				zap.Int64("study_time", p.DailyStudyTime),
				zap.Int64("want_study_time", want.studyTime),
				zap.Int64("completed", p.DailyCompletedNum),
				zap.Int64("want_completed", want.completed),
			)
			if err := tx.Planners.SetTotals(ctx, p.ID, want.studyTime, want.completed); err != nil {
				return err
			}
			report.PlannersRepaired++
		}

		calendars, err := tx.Calendars.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, c := range calendars {
			want := byCalendar[c.ID]
			report.CalendarsChecked++
			if c.MonthlyStudyTime == want.studyTime && c.MonthlyCompletedNum == want.completed {
				continue
			}
			s.log.Warn("calendar counters drifted",
				zap.Uint("calendar_id", c.ID),
				zap.Int64("study_time", c.MonthlyStudyTime),
				zap.Int64("want_study_time", want.studyTime),
				zap.Int64("completed", c.MonthlyCompletedNum),
				zap.Int64("want_completed", want.completed),
			)
			if err := tx.Calendars.SetTotals(ctx, c.ID, want.studyTime, want.completed); err != nil {
				return err
			}
			report.CalendarsRepaired++
		}
		return s.reconcileStudies(ctx, tx, &report)
	})
	if err != nil {
		return ReconcileReport{}, surface(s.log, "reconcile counters", err)
	}

	metrics.RecordReconcileRepairs("planners", report.PlannersRepaired)
	metrics.RecordReconcileRepairs("calendars", report.CalendarsRepaired)
	metrics.RecordReconcileRepairs("studies", report.StudiesRepaired)
	s.log.Info("counters reconciled",
		zap.Int("planners_checked", report.PlannersChecked),
		zap.Int("planners_repaired", report.PlannersRepaired),
		zap.Int("calendars_checked", report.CalendarsChecked),
		zap.Int("calendars_repaired", report.CalendarsRepaired),
		zap.Int("studies_checked", report.StudiesChecked),
		zap.Int("studies_repaired", report.StudiesRepaired),
	)
	return report, nil
}

func (s *ReconcileService) reconcileStudies(ctx context.Context, tx *repository.Store, report *ReconcileReport) error {
	totals, err := tx.Plans.TotalsByStudy(ctx)
	if err != nil {
		return err
	}
	byStudy := make(map[uint]int64, len(totals))
	for _, t := range totals {
		byStudy[t.StudyID] = t.StudyTime
	}
	members, err := tx.Studies.MemberCounts(ctx)
	if err != nil {
		return err
	}

	studies, err := tx.Studies.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, st := range studies {
		wantTime, wantMembers := byStudy[st.ID], members[st.ID]
		divisor := wantMembers
		if divisor <= 0 {
			divisor = 1
		}
		report.StudiesChecked++
		if st.TotalStudyTime == wantTime && st.MemberCount == wantMembers && st.AverageStudyTime == wantTime/divisor {
			continue
		}
		s.log.Warn("study counters drifted",
			zap.Uint("study_id", st.ID),
			zap.Int64("study_time", st.TotalStudyTime),
			zap.Int64("want_study_time", wantTime),
			zap.Int64("members", st.MemberCount),
			zap.Int64("want_members", wantMembers),
			zap.Int64("average", st.AverageStudyTime),
		)
		if err := tx.Studies.SetTotals(ctx, st.ID, wantTime, wantMembers); err != nil {
			return err
		}
		report.StudiesRepaired++
	}
	return nil
}
