package domain

import "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"

type ScheduleJob = scheduling.ScheduleJob
type ScheduleJobEvent = scheduling.ScheduleJobEvent
type ScheduleArtifact = scheduling.ScheduleArtifact
type Schedule = scheduling.Schedule
type ScheduleAssignment = scheduling.ScheduleAssignment
type ShiftTemplate = scheduling.ShiftTemplate
type CoverageRule = scheduling.CoverageRule
type ConstraintProfile = scheduling.ConstraintProfile
type Worker = scheduling.Worker
type WorkerUnitMembership = scheduling.WorkerUnitMembership
type WorkerAvailability = scheduling.WorkerAvailability
type WorkerPreference = scheduling.WorkerPreference
type SolverRun = scheduling.SolverRun

type JobStatus = scheduling.JobStatus
type SolverPlan = scheduling.SolverPlan
type ArtifactType = scheduling.ArtifactType
type JobAttributes = scheduling.JobAttributes
type Preview = scheduling.Preview
type PreviewAssignment = scheduling.PreviewAssignment
