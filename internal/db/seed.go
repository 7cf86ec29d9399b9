package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCities = []struct {
	name string
	lat  float64
	lon  float64
}{
	{"上海", 31.2304, 121.4737},
	{"北京", 39.9042, 116.4074},
	{"广州", 23.1291, 113.2644},
	{"深圳", 22.5431, 114.0579},
	{"杭州", 30.2741, 120.1551},
}

var seedInterests = []string{
	"旅行", "电影", "美食", "健身", "摄影", "音乐", "读书", "爬山", "游戏", "咖啡",
}

var seedOccupations = []string{
	"software engineer", "产品经理", "designer", "教师", "程序员", "医生", "IT consultant", "摄影师",
}

// SeedTestData resets the database and populates it with demo users,
// profiles and match actions.
//
// Behavior:
//  1. Clears existing data in `match_actions`, `profiles` and `users`.
//  2. Creates 20 users (10 male, 10 female) with hashed passwords and
//     profiles carrying coordinates, interests and occupations.
//  3. Generates decisions with ~70% likes, and every 3rd ensures a
//     reciprocal pending like so mutual matches can form.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"match_actions", "profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE match_actions AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'match_actions'")
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	// --- Seed Users + Profiles (10 male, 10 female) ---
	for i := 1; i <= 20; i++ {
		username := fmt.Sprintf("user%d", i)
		email := fmt.Sprintf("user%d@example.com", i)

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		if i > 10 {
			gender = "female"
		}

		user := User{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			Gender:       gender,
			Active:       true,
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		city := seedCities[r.Intn(len(seedCities))]
		birth := time.Date(1985+r.Intn(20), time.Month(1+r.Intn(12)), 1+r.Intn(28), 0, 0, 0, 0, time.UTC)
		lat := city.lat + r.Float64()*0.2 - 0.1
		lon := city.lon + r.Float64()*0.2 - 0.1

		interests := make([]string, 0, 4)
		for _, idx := range r.Perm(len(seedInterests))[:3+r.Intn(2)] {
			interests = append(interests, seedInterests[idx])
		}

		profile := Profile{
			UserID:     user.ID,
			BirthDate:  &birth,
			Latitude:   &lat,
			Longitude:  &lon,
			Location:   city.name,
			Occupation: seedOccupations[r.Intn(len(seedOccupations))],
			Interests:  JoinList(interests),
			Goals:      "long_term",
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
	}
	log.Println("Seeded 20 users with profiles.")

	// --- Seed MatchActions ---
	counter := 0
	for actorID := uint64(1); actorID <= 20; actorID++ {
		for j := 0; j < 6; j++ {
			targetID := uint64(r.Intn(20) + 1)
			if actorID == targetID {
				continue
			}

			var actor, target User
			if err := db.First(&actor, actorID).Error; err != nil {
				continue
			}
			if err := db.First(&target, targetID).Error; err != nil {
				continue
			}
			if actor.Gender == target.Gender {
				continue
			}

			status := StatusPending
			score := 0.5
			if r.Intn(100) >= 70 {
				status = StatusRejected
			} else if r.Intn(10) == 0 {
				score = 0.9 // occasional super-like
			}

			// guarantee a reciprocal pending like every 3rd pair
			if counter%3 == 0 && status == StatusPending {
				recip := MatchAction{
					ActorID:  targetID,
					TargetID: actorID,
					Status:   StatusPending,
					Score:    0.5,
				}
				db.Where("actor_id = ? AND target_id = ?", targetID, actorID).
					FirstOrCreate(&recip)
			}

			action := MatchAction{
				ActorID:  actorID,
				TargetID: targetID,
				Status:   status,
				Score:    score,
			}
			if err := db.Where("actor_id = ? AND target_id = ?", actorID, targetID).
				FirstOrCreate(&action).Error; err != nil {
				return fmt.Errorf("failed to seed match action: %w", err)
			}

			counter++
		}
	}

	return nil
}

// SeedMinimalTestData loads a small deterministic fixture for tests.
func SeedMinimalTestData(db *gorm.DB) error {
	for _, table := range []string{"match_actions", "profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	birth := func(years int) *time.Time {
		t := time.Now().UTC().AddDate(-years, 0, -30)
		return &t
	}
	coord := func(v float64) *float64 { return &v }

	users := []User{
		{ID: 1, Username: "user1", Email: "u1@test.com", PasswordHash: "x", Gender: "male", Active: true},
		{ID: 2, Username: "user2", Email: "u2@test.com", PasswordHash: "x", Gender: "female", Active: true},
		{ID: 3, Username: "user3", Email: "u3@test.com", PasswordHash: "x", Gender: "female", Active: true},
		{ID: 4, Username: "user4", Email: "u4@test.com", PasswordHash: "x", Gender: "male", Active: true},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	profiles := []Profile{
		{UserID: 1, BirthDate: birth(30), Latitude: coord(31.2304), Longitude: coord(121.4737),
			Location: "上海", Occupation: "software engineer", Interests: "旅行,电影,美食"},
		{UserID: 2, BirthDate: birth(28), Latitude: coord(31.25), Longitude: coord(121.48),
			Location: "上海", Occupation: "程序员", Interests: "电影,美食,健身"},
		{UserID: 3, BirthDate: birth(33), Location: "北京", Occupation: "教师",
			Interests: "读书,爬山", PreferredGenders: "female"},
		{UserID: 4, BirthDate: birth(45), Latitude: coord(39.9042), Longitude: coord(116.4074),
			Location: "北京", Occupation: "医生", Interests: "音乐"},
	}
	if err := db.Create(&profiles).Error; err != nil {
		return err
	}

	return nil
}
