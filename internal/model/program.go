package model

import "time"

// Program statuses.
const (
    ProgramActive    = "active"
    ProgramCompleted = "completed"
    ProgramPaused    = "paused"
)

// Program is a workout program assigned to a client.  ProgramData
// holds the structured weekly plan as JSON; AI-generated programs set
// IsAIGenerated and record the model used.  Rows live in `programs`.
type Program struct {
    ID              uint64     // programs.id
    TrainerID       uint64     // programs.trainer_id
    ClientID        uint64     // programs.client_id
    Name            string     // programs.name
    Description     *string    // programs.description (nullable)
    Goal            *string    // programs.goal (nullable)
    DurationWeeks   *int       // programs.duration_weeks (nullable)
    DifficultyLevel *string    // programs.difficulty_level (nullable)
    IsAIGenerated   bool       // programs.is_ai_generated
    AIModel         *string    // programs.ai_model (nullable)
    Status          string     // programs.status
    StartDate       *time.Time // programs.start_date (nullable)
    EndDate         *time.Time // programs.end_date (nullable)
    ProgramData     *string    // programs.program_data (JSON, nullable)
    Notes           *string    // programs.notes (nullable)
    CreatedAt       time.Time  // programs.created_at
    UpdatedAt       time.Time  // programs.updated_at
}

// Exercise is one exercise inside a program.  Reps is a string so
// ranges like "8-12" can be expressed.  Rows live in `exercises`.
type Exercise struct {
    ID              uint64    // exercises.id
    ProgramID       uint64    // exercises.program_id
    Name            string    // exercises.name
    Description     *string   // exercises.description (nullable)
    ExerciseType    *string   // exercises.exercise_type (nullable)
    MuscleGroup     *string   // exercises.muscle_group (nullable)
    Equipment       *string   // exercises.equipment (nullable)
    Sets            *int      // exercises.sets (nullable)
    Reps            *string   // exercises.reps (nullable, e.g. "8-12")
    DurationMinutes *int      // exercises.duration_minutes (nullable)
    RestSeconds     *int      // exercises.rest_seconds (nullable)
    OrderIndex      int       // exercises.order_index
    Notes           *string   // exercises.notes (nullable)
    CreatedAt       time.Time // exercises.created_at
}

// ValidProgramStatus reports whether s is a known program status.
func ValidProgramStatus(s string) bool {
    return s == ProgramActive || s == ProgramCompleted || s == ProgramPaused
}
