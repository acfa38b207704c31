// Package jobs runs periodic work that no request triggers.
//
// Each job owns a robfig/cron scheduler with seconds enabled. JobManager starts
// them together and, if one refuses its schedule, stops the ones that already
// started:
//
//	manager := jobs.NewJobManager(
//		jobs.NewOverdueOrdersJob(overdueQuery, graceDays, "", now, logger),
//	)
//	if err := manager.StartAll(); err != nil {
//		return err
//	}
//	defer manager.StopAll()
//
// OverdueOrdersJob reports active orders past their return allowance. It only
// reads; a failed scan is logged and the next tick tries again.
package jobs
