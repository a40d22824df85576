package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedTables lists tables in child-to-parent order for clearing.
var seedTables = []string{"queue_entries", "matches", "swipes", "interests", "preferences", "profiles", "users"}

var seedInterests = []struct{ Category, Name string }{
	{"outdoors", "hiking"}, {"outdoors", "climbing"}, {"outdoors", "cycling"},
	{"music", "jazz"}, {"music", "techno"}, {"music", "folk"},
	{"food", "cooking"}, {"food", "coffee"}, {"arts", "photography"},
	{"arts", "theatre"}, {"games", "chess"}, {"games", "board games"},
}

// SeedOptions controls demo data generation.
type SeedOptions struct {
	Users int
	// Seed fixes the random source; zero uses the current time.
	Seed int64
	Now  time.Time
}

// SeedTestData resets the database and populates it with demo users,
// profiles, preferences, interests and swipes.
//
// Behavior:
//  1. Clears every matchmaking table.
//  2. Creates opts.Users users, alternating male/female, with hashed passwords.
//  3. Each user gets a profile near central London and a preference for the
//     other gender.
//  4. Each user swipes on up to 12 others (~70% likes, ~5% super-likes);
//     every 3rd like is reciprocated so reconciliation has matches to form.
//
// Matches are not written here; run match reconciliation afterwards.
func SeedTestData(db *gorm.DB, opts SeedOptions) error {
	if opts.Users <= 0 {
		opts.Users = 20
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(opts.Seed))

	// --- Fresh start ---
	for _, table := range seedTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		for _, table := range []string{"users", "swipes", "matches", "interests"} {
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('users', 'swipes', 'matches', 'interests')")
	}
	slog.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	genders := make(map[uint64]string, opts.Users)
	err = db.Transaction(func(tx *gorm.DB) error {
		for i := 1; i <= opts.Users; i++ {
			gender, wants := "male", "female"
			if i%2 == 0 {
				gender, wants = "female", "male"
			}
			user := User{
				Username:     fmt.Sprintf("user%d", i),
				Email:        fmt.Sprintf("user%d@example.com", i),
				PasswordHash: string(hash),
				Gender:       gender,
				Active:       true,
				LastLoginAt:  opts.Now.Add(-time.Duration(r.Intn(500)) * time.Hour),
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to seed user: %w", err)
			}
			genders[user.ID] = gender

			lat := 51.5074 + (r.Float64()-0.5)*0.8
			lon := -0.1278 + (r.Float64()-0.5)*1.2
			active := opts.Now.Add(-time.Duration(r.Intn(24*30)) * time.Hour)

			picked := r.Perm(len(seedInterests))[:2+r.Intn(4)]
			interests := make([]Interest, 0, len(picked))
			for _, k := range picked {
				interests = append(interests, Interest{UserID: user.ID, Category: seedInterests[k].Category, Name: seedInterests[k].Name})
			}

			profile := Profile{
				UserID:      user.ID,
				Age:         21 + r.Intn(20),
				Gender:      gender,
				Orientation: "straight",
				Location:    "London",
				Latitude:    &lat,
				Longitude:   &lon,
				Bio:         fmt.Sprintf("Hi, I'm user%d", i),
				LastActive:  &active,
			}
			// location, coordinates, orientation, age, gender, bio, interests
			profile.ProfileCompletion = 7 * 100 / 9
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("failed to seed profile: %w", err)
			}
			if err := tx.Create(&interests).Error; err != nil {
				return fmt.Errorf("failed to seed interests: %w", err)
			}
			pref := Preference{
				UserID:          user.ID,
				MinAge:          18,
				MaxAge:          45,
				MaxDistance:     50,
				PreferredGender: wants,
				NotifyMatches:   true,
				NotifySuperLike: true,
			}
			if err := tx.Create(&pref).Error; err != nil {
				return fmt.Errorf("failed to seed preference: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("seeded users", "count", opts.Users)

	// --- Seed Swipes ---
	live := true
	seen := make(map[[2]uint64]bool)
	var swipes []Swipe
	add := func(actor, target uint64, typ string, at time.Time) {
		if seen[[2]uint64{actor, target}] {
			return
		}
		seen[[2]uint64{actor, target}] = true
		swipes = append(swipes, Swipe{ActorID: actor, TargetID: target, Type: typ, Live: &live, CreatedAt: at})
	}

	likes := 0
	for actorID := uint64(1); actorID <= uint64(opts.Users); actorID++ {
		for j := 0; j < 12; j++ {
			targetID := uint64(r.Intn(opts.Users) + 1)
			if targetID == actorID || genders[actorID] == genders[targetID] {
				continue
			}
			at := opts.Now.Add(-time.Duration(2+r.Intn(72)) * time.Hour).Truncate(time.Millisecond)

			roll := r.Intn(100)
			switch {
			case roll < 5:
				add(actorID, targetID, "super_like", at)
			case roll < 70:
				add(actorID, targetID, "like", at)
			default:
				add(actorID, targetID, "pass", at)
				continue
			}
			likes++
			if likes%3 == 0 {
				add(targetID, actorID, "like", at.Add(time.Hour))
			}
		}
	}
	if len(swipes) > 0 {
		if err := db.CreateInBatches(&swipes, 100).Error; err != nil {
			return fmt.Errorf("failed to seed swipes: %w", err)
		}
	}
	slog.Info("seeded swipes", "count", len(swipes))
	return nil
}
