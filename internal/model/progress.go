package model

import "time"

// Progress photo types.
const (
    PhotoFront  = "front"
    PhotoBack   = "back"
    PhotoSide   = "side"
    PhotoCustom = "custom"
)

// ProgressEntry is one dated set of measurements for a client.
// CustomMetrics holds trainer-defined metrics as a JSON object keyed
// by metric name.  Rows live in `progress_entries`.
type ProgressEntry struct {
    ID                uint64    // progress_entries.id
    TrainerID         uint64    // progress_entries.trainer_id
    ClientID          uint64    // progress_entries.client_id
    EntryDate         time.Time // progress_entries.entry_date (DATE)
    Weight            *float64  // progress_entries.weight (nullable)
    BodyFatPercentage *float64  // progress_entries.body_fat_percentage (nullable)
    MuscleMass        *float64  // progress_entries.muscle_mass (nullable)
    Chest             *float64  // progress_entries.chest (nullable)
    Waist             *float64  // progress_entries.waist (nullable)
    Hips              *float64  // progress_entries.hips (nullable)
    Thigh             *float64  // progress_entries.thigh (nullable)
    Arm               *float64  // progress_entries.arm (nullable)
    CustomMetrics     *string   // progress_entries.custom_metrics (JSON, nullable)
    Notes             *string   // progress_entries.notes (nullable)
    MoodRating        *int      // progress_entries.mood_rating (1-10, nullable)
    EnergyLevel       *int      // progress_entries.energy_level (1-10, nullable)
    CreatedAt         time.Time // progress_entries.created_at
    UpdatedAt         time.Time // progress_entries.updated_at
}

// ProgressPhoto is a progress photo record; the image itself lives at
// PhotoURL.  Rows live in `progress_photos`.
type ProgressPhoto struct {
    ID           uint64    // progress_photos.id
    TrainerID    uint64    // progress_photos.trainer_id
    ClientID     uint64    // progress_photos.client_id
    PhotoURL     string    // progress_photos.photo_url
    PhotoType    *string   // progress_photos.photo_type (nullable)
    Caption      *string   // progress_photos.caption (nullable)
    WeightAtTime *float64  // progress_photos.weight_at_time (nullable)
    TakenAt      time.Time // progress_photos.taken_at
}

// ValidPhotoType reports whether s is a known photo type.
func ValidPhotoType(s string) bool {
    return s == PhotoFront || s == PhotoBack || s == PhotoSide || s == PhotoCustom
}
