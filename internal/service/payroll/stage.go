package payroll

import (
	"context"
	"log/slog"

	"github.com/openpayroll/payroll-backend-go/internal/config"
	"github.com/openpayroll/payroll-backend-go/internal/domain/attendance"
	"github.com/openpayroll/payroll-backend-go/internal/domain/employee"
	"github.com/openpayroll/payroll-backend-go/internal/domain/payhead"
	"github.com/openpayroll/payroll-backend-go/internal/domain/payroll"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/formula"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// basicSalaryVariable is the catalogue variable whose formula prices the
// salary that benefit contributions are computed against.
const basicSalaryVariable = "basic_salary"

// StagingServiceImpl runs the three-stage pay-run pipeline. One instance is
// safe for concurrent runs: it holds no run-specific mutable state.
type StagingServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	payheadRepo    payhead.PayheadRepository
	attendanceRepo attendance.AttendanceRepository
	benefits       *BenefitCalculator
	logger         *slog.Logger
	cfg            config.PayrollConfig
}

func NewStagingService(
	payrollRepo payroll.PayrollRepository,
	payheadRepo payhead.PayheadRepository,
	attendanceRepo attendance.AttendanceRepository,
	logger *slog.Logger,
	cfg config.PayrollConfig,
) payroll.PayrollService {
	return &StagingServiceImpl{
		payrollRepo:    payrollRepo,
		payheadRepo:    payheadRepo,
		attendanceRepo: attendanceRepo,
		benefits:       NewBenefitCalculator(logger),
		logger:         logger,
		cfg:            cfg,
	}
}

// Process runs the pipeline: (1) fetch the unprocessed snapshot and the
// attendance range concurrently, (2) compute every employee's amounts in
// parallel, (3) commit all breakdown rows in one upsert batch and assemble
// the payslip data set. Stage 1 and stage 3 failures abort the whole run; no
// partial commit is ever attempted. Stage 2 degradations are logged per
// employee and never fail the run.
func (s *StagingServiceImpl) Process(ctx context.Context, req payroll.ProcessRequest, progress func(string)) (payroll.PayslipData, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayslipData{}, err
	}
	notify := func(msg string) {
		if progress != nil {
			progress(msg)
		}
	}

	notify("Fetching unprocessed payroll data...")
	period, err := s.payrollRepo.GetPayPeriod(ctx, req.PayPeriodID)
	if err != nil {
		return payroll.PayslipData{}, &payroll.StageError{Stage: payroll.StageFetch, Err: err}
	}

	// Stage 1 - both retrievals must complete before stage 2 begins;
	// either failing aborts the run.
	var (
		snap payroll.Snapshot
		att  attendance.RangeData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = s.payrollRepo.GetUnprocessed(gctx, req.PayPeriodID)
		return err
	})
	g.Go(func() error {
		var err error
		att, err = s.attendanceRepo.GetRange(gctx, period.StartDate, period.EndDate)
		return err
	})
	if err := g.Wait(); err != nil {
		return payroll.PayslipData{}, &payroll.StageError{Stage: payroll.StageFetch, Err: err}
	}
	if len(snap.Payrolls) == 0 {
		return payroll.PayslipData{}, &payroll.StageError{Stage: payroll.StageFetch, Err: payroll.ErrNothingToProcess}
	}
	snap.Period = period

	// Stage 2
	notify("Performing calculations...")
	amounts := s.compute(ctx, snap, att)

	// Stage 3
	notify("Getting ready...")
	data, err := s.commit(ctx, snap, amounts)
	if err != nil {
		return payroll.PayslipData{}, &payroll.StageError{Stage: payroll.StageCommit, Err: err}
	}

	s.logger.Info("pay run committed",
		slog.String("pay_period_id", period.ID),
		slog.Int("employees", len(snap.Employees)),
		slog.Int("breakdowns", len(data.Breakdowns)),
	)
	return data, nil
}

// runInputs is the precomputed lookup state shared read-only by every
// employee's stage-2 computation.
type runInputs struct {
	snap            payroll.Snapshot
	att             attendance.RangeData
	disburseAmount  map[string]float64 // employee id -> pending disbursement
	disburseID      map[string]string
	repayAmount     map[string]float64 // employee id -> outstanding balance
	repayID         map[string]string
	overrides       map[string]map[string]decimal.Decimal // payhead id -> employee id -> amount
	enrollments     map[string][]payroll.Enrollment
	basicFormula    string
}

func (s *StagingServiceImpl) buildInputs(snap payroll.Snapshot, att attendance.RangeData) *runInputs {
	in := &runInputs{
		snap:           snap,
		att:            att,
		disburseAmount: make(map[string]float64),
		disburseID:     make(map[string]string),
		repayAmount:    make(map[string]float64),
		repayID:        make(map[string]string),
		overrides:      make(map[string]map[string]decimal.Decimal),
		enrollments:    make(map[string][]payroll.Enrollment),
	}

	for _, ca := range snap.CashToDisburse {
		in.disburseAmount[ca.EmployeeID] = ca.AmountRequested.InexactFloat64()
		in.disburseID[ca.EmployeeID] = ca.ID
	}
	for _, cr := range snap.CashToRepay {
		in.repayAmount[cr.EmployeeID] = cr.Outstanding().InexactFloat64()
		in.repayID[cr.EmployeeID] = cr.ID
	}
	for _, sa := range snap.SpecificAmounts {
		if in.overrides[sa.PayheadID] == nil {
			in.overrides[sa.PayheadID] = make(map[string]decimal.Decimal)
		}
		in.overrides[sa.PayheadID][sa.EmployeeID] = sa.Amount
	}
	for _, enr := range snap.Enrollments {
		in.enrollments[enr.EmployeeID] = append(in.enrollments[enr.EmployeeID], enr)
	}
	for _, ph := range snap.Payheads {
		if ph.Variable == basicSalaryVariable && ph.Type == payhead.TypeEarning {
			in.basicFormula = ph.Calculation
			break
		}
	}
	return in
}

// compute runs stage 2: every employee independently, on a worker pool
// bounded by cfg.Workers, reading only the shared read-only inputs and
// writing only its own result slot. No employee observes another's values.
func (s *StagingServiceImpl) compute(ctx context.Context, snap payroll.Snapshot, att attendance.RangeData) map[string][]payroll.VariableAmount {
	in := s.buildInputs(snap, att)

	results := make([][]payroll.VariableAmount, len(snap.Employees))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, emp := range snap.Employees {
		i, emp := i, emp
		g.Go(func() error {
			results[i] = s.computeEmployee(emp, in)
			return nil
		})
	}
	// Worker funcs never return errors: per-employee failures degrade that
	// employee's batch and are logged inside.
	_ = g.Wait()

	out := make(map[string][]payroll.VariableAmount, len(snap.Employees))
	for i, emp := range snap.Employees {
		out[emp.ID] = results[i]
	}
	return out
}

func (s *StagingServiceImpl) computeEmployee(emp employee.Employee, in *runInputs) []payroll.VariableAmount {
	rate := emp.RatePerHour.InexactFloat64()
	if rate == 0 {
		rate = s.cfg.DefaultRatePerHour
	}

	sched := attendance.ScheduleFor(in.att.Schedules, emp.ID, in.snap.Period.EndDate)
	undertime := UndertimeMinutes(s.logger, in.att.Statuses, emp.ID, sched, in.snap.Period.StartDate, in.snap.Period.EndDate)

	base := BaseVariables{
		RatePerHour:     rate,
		TotalShiftHours: s.cfg.StandardShiftHours,
		BasicSalary:     emp.BaseSalary.InexactFloat64(),
		PayrollDays:     float64(in.snap.Period.Days()),
		Disbursement:    in.disburseAmount[emp.ID],
		Repayment:       in.repayAmount[emp.ID],
		Tardiness:       float64(undertime) * (rate / 60),
	}

	// Benefit contributions for every enrolled plan, always via the
	// contribution calculator.
	var contributions []payroll.VariableAmount
	for _, enr := range in.enrollments[emp.ID] {
		salary := base.BasicSalary
		if in.basicFormula != "" {
			pass := CalculateAllPayheads(s.logger, base, []payroll.VariableFormula{{Formula: in.basicFormula}}, formula.ModeSuppress)
			if len(pass) == 1 {
				salary = pass[0].Amount
			}
		}
		contributions = append(contributions, payroll.VariableAmount{
			LinkID:    enr.ID,
			PayheadID: enr.Setting.DeductionPayheadID,
			Variable:  enr.Setting.Name,
			Amount:    s.benefits.Contribution(salary, enr.Setting),
		})
	}

	// Eligible payheads in catalogue order; an override amount replaces the
	// formula as a plain literal.
	var formulas []payroll.VariableFormula
	for _, ph := range in.snap.Payheads {
		override, hasOverride := in.overrides[ph.ID][emp.ID]
		pres := Presence{
			HasOverride:     hasOverride,
			HasDisbursement: in.disburseID[emp.ID] != "",
			HasRepayment:    in.repayID[emp.ID] != "",
		}
		if !Applicable(emp, ph, pres) {
			continue
		}

		src := ph.Calculation
		if hasOverride {
			src = override.String()
		}
		linkID := ""
		switch ph.Calculation {
		case payhead.CalcDisbursement:
			linkID = in.disburseID[emp.ID]
		case payhead.CalcRepayment:
			linkID = in.repayID[emp.ID]
		}

		formulas = append(formulas, payroll.VariableFormula{
			LinkID:    linkID,
			PayheadID: ph.ID,
			Variable:  ph.Variable,
			Formula:   src,
		})
	}

	// Strict mode: one failure discards this employee's whole formula batch.
	// Contributions are computed independently and survive.
	computed := CalculateAllPayheads(s.logger, base, formulas, formula.ModeStrict)
	if computed == nil && len(formulas) > 0 {
		s.logger.Error("discarding employee payhead batch after evaluation failure",
			slog.String("employee_id", emp.ID),
		)
	}

	out := make([]payroll.VariableAmount, 0, len(computed)+len(contributions))
	for _, va := range computed {
		if va.PayheadID == "" {
			continue
		}
		out = append(out, va)
	}
	return append(out, contributions...)
}

// commit runs stage 3: one upsert batch keyed by (payroll_id, payhead_id),
// then assembles the payslip data set from what was actually persisted.
func (s *StagingServiceImpl) commit(ctx context.Context, snap payroll.Snapshot, amounts map[string][]payroll.VariableAmount) (payroll.PayslipData, error) {
	type key struct{ payrollID, payheadID string }

	// Later amounts replace earlier ones for the same pair, so a pair can
	// never produce two rows in one payload.
	var order []key
	byKey := make(map[key]payroll.Breakdown)
	for _, p := range snap.Payrolls {
		for _, va := range amounts[p.EmployeeID] {
			if va.PayheadID == "" {
				continue
			}
			k := key{p.ID, va.PayheadID}
			if _, seen := byKey[k]; !seen {
				order = append(order, k)
			}
			byKey[k] = payroll.Breakdown{
				PayrollID: p.ID,
				PayheadID: va.PayheadID,
				Amount:    decimal.NewFromFloat(va.Amount),
			}
		}
	}
	rows := make([]payroll.Breakdown, 0, len(order))
	for _, k := range order {
		rows = append(rows, byKey[k])
	}

	saved, err := s.payrollRepo.UpsertBreakdowns(ctx, rows)
	if err != nil {
		return payroll.PayslipData{}, err
	}

	earnings, deductions := referencedPayheads(snap.Payheads, saved)
	return payroll.PayslipData{
		Payrolls:   snap.Payrolls,
		Breakdowns: saved,
		Employees:  snap.Employees,
		Earnings:   earnings,
		Deductions: deductions,
		Amounts:    amounts,
	}, nil
}

// referencedPayheads splits the catalogue into the earning and deduction
// subsets actually referenced by the persisted rows.
func referencedPayheads(catalogue []payhead.Payhead, rows []payroll.Breakdown) (earnings, deductions []payhead.Payhead) {
	referenced := make(map[string]bool, len(rows))
	for _, bd := range rows {
		referenced[bd.PayheadID] = true
	}
	for _, ph := range catalogue {
		if !referenced[ph.ID] {
			continue
		}
		switch ph.Type {
		case payhead.TypeEarning:
			earnings = append(earnings, ph)
		case payhead.TypeDeduction:
			deductions = append(deductions, ph)
		}
	}
	return earnings, deductions
}

// Payslip assembles the persisted payslip data set for a period without
// recomputing anything.
func (s *StagingServiceImpl) Payslip(ctx context.Context, periodID string) (payroll.PayslipData, error) {
	period, err := s.payrollRepo.GetPayPeriod(ctx, periodID)
	if err != nil {
		return payroll.PayslipData{}, err
	}

	snap, err := s.payrollRepo.GetUnprocessed(ctx, period.ID)
	if err != nil {
		return payroll.PayslipData{}, err
	}

	breakdowns, err := s.payrollRepo.GetBreakdownsByPeriod(ctx, period.ID)
	if err != nil {
		return payroll.PayslipData{}, err
	}

	earnings, deductions := referencedPayheads(snap.Payheads, breakdowns)
	return payroll.PayslipData{
		Payrolls:   snap.Payrolls,
		Breakdowns: breakdowns,
		Employees:  snap.Employees,
		Earnings:   earnings,
		Deductions: deductions,
	}, nil
}

// Reprice upserts one breakdown row outside a full run.
func (s *StagingServiceImpl) Reprice(ctx context.Context, req payroll.RepriceBreakdownRequest) (payroll.Breakdown, error) {
	if err := req.Validate(); err != nil {
		return payroll.Breakdown{}, err
	}

	return s.payrollRepo.UpsertBreakdown(ctx, payroll.Breakdown{
		PayrollID: req.PayrollID,
		PayheadID: req.PayheadID,
		Amount:    req.Amount,
	})
}

// Payheads returns the active catalogue in evaluation order.
func (s *StagingServiceImpl) Payheads(ctx context.Context) ([]payhead.Payhead, error) {
	return s.payheadRepo.ListActive(ctx)
}
