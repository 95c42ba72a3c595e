package model

import "time"

// Client is a person trained by a trainer.  Every client belongs to
// exactly one trainer; there is no sharing of client rows across
// tenants.  This struct corresponds to a row in the `clients` table.
type Client struct {
    ID                uint64     // clients.id
    TrainerID         uint64     // clients.trainer_id
    FirstName         string     // clients.first_name
    LastName          string     // clients.last_name
    Email             string     // clients.email
    Phone             *string    // clients.phone (nullable)
    DateOfBirth       *time.Time // clients.date_of_birth (nullable)
    Gender            *string    // clients.gender (nullable)
    FitnessGoal       *string    // clients.fitness_goal (nullable)
    FitnessLevel      *string    // clients.fitness_level (nullable)
    MedicalConditions *string    // clients.medical_conditions (nullable)
    HeightCm          *float64   // clients.height_cm (nullable)
    WeightKg          *float64   // clients.weight_kg (nullable)
    MembershipType    *string    // clients.membership_type (nullable)
    MembershipStart   *time.Time // clients.membership_start (nullable)
    MembershipEnd     *time.Time // clients.membership_end (nullable)
    IsActive          bool       // clients.is_active
    Notes             *string    // clients.notes (nullable)
    CreatedAt         time.Time  // clients.created_at
    UpdatedAt         time.Time  // clients.updated_at
}

// FullName joins the client's first and last name.
func (c *Client) FullName() string {
    return c.FirstName + " " + c.LastName
}

// BMI returns the body mass index computed from the stored height and
// weight, or nil when either measurement is missing or non-positive.
func (c *Client) BMI() *float64 {
    if c.HeightCm == nil || c.WeightKg == nil {
        return nil
    }
    h := *c.HeightCm / 100
    if h <= 0 || *c.WeightKg <= 0 {
        return nil
    }
    v := *c.WeightKg / (h * h)
    return &v
}
