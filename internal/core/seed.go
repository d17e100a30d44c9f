package core

import (
	"context"
	"errors"
	"strconv"
	"time"

	"annexcore/pkg/domain"
)

// ErrStoreNotEmpty is returned by Seed when the store already holds reference data.
var ErrStoreNotEmpty = errors.New("store already contains data")

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

// SampleData returns the demonstration data set: the nine provinces, fifteen
// districts and thirteen universities of the location hierarchy together
// with sample users, listings and announcements.
func SampleData() Snapshot {
	provinces := []string{"Western", "Central", "Southern", "Northern", "Eastern", "North Western", "North Central", "Uva", "Sabaragamuwa"}
	districts := []struct{ name, province string }{
		{"Colombo", "p1"}, {"Gampaha", "p1"}, {"Kalutara", "p1"},
		{"Kandy", "p2"}, {"Matale", "p2"}, {"Nuwara Eliya", "p2"},
		{"Galle", "p3"}, {"Matara", "p3"}, {"Hambantota", "p3"},
		{"Jaffna", "p4"},
		{"Trincomalee", "p5"},
		{"Kurunegala", "p6"},
		{"Anuradhapura", "p7"},
		{"Badulla", "p8"},
		{"Ratnapura", "p9"},
	}
	universities := []struct{ name, district string }{
		{"University of Colombo", "d1"},
		{"University of Peradeniya", "d4"},
		{"University of Moratuwa", "d3"},
		{"University of Ruhuna", "d8"},
		{"University of Sri Jayewardenepura", "d1"},
		{"University of Kelaniya", "d2"},
		{"NIMASA Institute", "d7"},
		{"Eastern University", "d11"},
		{"University of Jaffna", "d10"},
		{"Open University of Sri Lanka", "d1"},
		{"Rajarata University", "d13"},
		{"Uva Wellassa University", "d14"},
		{"Sabaragamuwa University", "d15"},
	}

	var snap Snapshot
	for i, name := range provinces {
		snap.Provinces = append(snap.Provinces, Province{Base: domain.Base{ID: "p" + strconv.Itoa(i+1)}, Name: name})
	}
	for i, d := range districts {
		snap.Districts = append(snap.Districts, District{Base: domain.Base{ID: "d" + strconv.Itoa(i+1)}, Name: d.name, ProvinceID: d.province})
	}
	for i, u := range universities {
		snap.Universities = append(snap.Universities, University{Base: domain.Base{ID: "u" + strconv.Itoa(i+1)}, Name: u.name, DistrictID: u.district})
	}

	snap.Users = []User{
		{Base: domain.Base{ID: "usr1"}, Name: "Nimal Perera", Email: "nimal.p@example.com", Role: domain.RoleStudent, Status: domain.UserStatusActive, RegisteredAt: day(2023, time.January, 15)},
		{Base: domain.Base{ID: "usr2"}, Name: "Kamala Silva", Email: "kamala.s@example.com", Role: domain.RoleOwner, Status: domain.UserStatusActive, RegisteredAt: day(2023, time.February, 20)},
		{Base: domain.Base{ID: "usr3"}, Name: "Sunil Fernando", Email: "sunil.f@example.com", Role: domain.RoleStudent, Status: domain.UserStatusSuspended, RegisteredAt: day(2023, time.March, 1)},
		{Base: domain.Base{ID: "usr4"}, Name: "Amara Bandara", Email: "amara.b@example.com", Role: domain.RoleStudent, Status: domain.UserStatusActive, RegisteredAt: day(2023, time.April, 10)},
		{Base: domain.Base{ID: "usr5"}, Name: "Piyal Rajapaksha", Email: "piyal.r@example.com", Role: domain.RoleOwner, Status: domain.UserStatusActive, RegisteredAt: day(2023, time.May, 5)},
		{Base: domain.Base{ID: "usr6"}, Name: "Gayani Samaraweera", Email: "gayani.s@example.com", Role: domain.RoleStudent, Status: domain.UserStatusActive, RegisteredAt: day(2023, time.June, 12)},
	}

	snap.Annexes = []Annex{
		{
			Base:         domain.Base{ID: "a1"},
			Title:        "Peradeniya Annex - Single Room",
			Campus:       "University of Peradeniya",
			UniversityID: strPtr("u2"),
			Price:        "Rs. 15,000/month",
			Status:       domain.AnnexStatusPending,
			PostedAt:     day(2024, time.July, 20),
			Description:  "A cozy single room near the university with all basic amenities. Ideal for a single student looking for a quiet place.",
			Address:      "Peradeniya Rd, Kandy",
			Features:     []string{"Single Room", "Attached Bathroom", "Furnished", "Study Table"},
			ContactName:  "Kasun Perera",
			ContactPhone: "0712345678",
			ContactEmail: "kasun@example.com",
			Images:       []string{"https://placehold.co/300x200/FF0000/FFFFFF?text=Annex1"},
		},
		{
			Base:         domain.Base{ID: "a2"},
			Title:        "Colombo Annex - Spacious 2BHK",
			Campus:       "University of Colombo",
			UniversityID: strPtr("u1"),
			Price:        "Rs. 30,000/month",
			Status:       domain.AnnexStatusActive,
			PostedAt:     day(2024, time.July, 15),
			Description:  "2-bedroom house ideal for students. Located close to public transport and supermarkets.",
			Address:      "Bambalapitiya, Colombo 04",
			Features:     []string{"2 Bedrooms", "Attached Bathroom", "Furnished", "Parking", "Hot Water"},
			ContactName:  "Nimal Bandara",
			ContactPhone: "0778765432",
			ContactEmail: "nimal@example.com",
			Images: []string{
				"https://placehold.co/300x200/00FF00/000000?text=Annex2",
				"https://placehold.co/300x200/00FF00/000000?text=Annex2B",
			},
		},
		{
			Base:         domain.Base{ID: "a3"},
			Title:        "Moratuwa Annex - Shared Room",
			Campus:       "University of Moratuwa",
			UniversityID: strPtr("u3"),
			Price:        "Rs. 10,000/month",
			Status:       domain.AnnexStatusRejected,
			PostedAt:     day(2024, time.July, 22),
			Description:  "Shared room available for female students. Friendly neighborhood and walkable distance to university.",
			Address:      "Katubedda, Moratuwa",
			Features:     []string{"Shared Room", "Parking", "Electricity Included"},
			ContactName:  "Priya Fernando",
			ContactPhone: "0754567890",
			ContactEmail: "priya@example.com",
			Images:       []string{"https://placehold.co/300x200/0000FF/FFFFFF?text=Annex3"},
		},
		{
			Base:         domain.Base{ID: "a4"},
			Title:        "Ruhunu Annex - New Building",
			Campus:       "University of Ruhuna",
			UniversityID: strPtr("u4"),
			Price:        "Rs. 20,000/month",
			Status:       domain.AnnexStatusActive,
			PostedAt:     day(2024, time.July, 18),
			Description:  "Brand new annex with modern facilities. Close to Ruhuna University main gate.",
			Address:      "Wellamadama, Matara",
			Features:     []string{"Single Room", "Attached Bathroom", "AC", "Washing Machine"},
			ContactName:  "Samantha Silva",
			ContactPhone: "0701234567",
			ContactEmail: "samantha@example.com",
			Images: []string{
				"https://placehold.co/300x200/FFFF00/000000?text=Annex4",
				"https://placehold.co/300x200/FFFF00/000000?text=Annex4B",
				"https://placehold.co/300x200/FFFF00/000000?text=Annex4C",
			},
		},
	}

	snap.Announcements = []Announcement{
		{Base: domain.Base{ID: "ann1"}, Title: "New annex registration process", Content: "You can now register your annexes more easily. Visit our help section for details.", PostedAt: day(2024, time.July, 1), ImageURL: "https://placehold.co/400x200/FF5733/FFFFFF?text=New+Feature"},
		{Base: domain.Base{ID: "ann2"}, Title: "Website maintenance", Content: "Please note that the website will be under maintenance tomorrow (July 10) from 2 to 4 in the morning.", PostedAt: day(2024, time.July, 9), ImageURL: "https://placehold.co/400x200/3366FF/FFFFFF?text=Maintenance"},
		{Base: domain.Base{ID: "ann3"}, Title: "New features released", Content: "New search filters have been added to the site. You can now find the annexes you need faster.", PostedAt: day(2024, time.June, 25), ImageURL: "https://placehold.co/400x200/33FF57/000000?text=New+Filters"},
		{Base: domain.Base{ID: "ann4"}, Title: "Special offers for university students", Content: "For a limited time, special discounts are available on selected accommodation. Explore today!", PostedAt: day(2024, time.August, 1), ImageURL: "https://placehold.co/400x200/FFCC33/000000?text=Special+Offers"},
		{Base: domain.Base{ID: "ann5"}, Title: "Our new mobile app", Content: "You can now find accommodation easily through our new mobile app. Download it from the App Store or Play Store.", PostedAt: day(2024, time.August, 5), ImageURL: "https://placehold.co/400x200/9933FF/FFFFFF?text=Mobile+App"},
	}
	return snap
}

// Seed loads SampleData into an empty store in a single transaction.
func (s *Service) Seed(ctx context.Context) (Result, error) {
	if len(s.store.ListProvinces()) > 0 {
		return Result{}, ErrStoreNotEmpty
	}
	data := SampleData()
	return s.run(ctx, "seed", func(tx Transaction) (string, error) {
		for _, p := range data.Provinces {
			if _, err := tx.CreateProvince(p); err != nil {
				return "", err
			}
		}
		for _, d := range data.Districts {
			if _, err := tx.CreateDistrict(d); err != nil {
				return "", err
			}
		}
		for _, u := range data.Universities {
			if _, err := tx.CreateUniversity(u); err != nil {
				return "", err
			}
		}
		for _, u := range data.Users {
			if _, err := tx.CreateUser(u); err != nil {
				return "", err
			}
		}
		for _, a := range data.Annexes {
			if _, err := tx.CreateAnnex(a); err != nil {
				return "", err
			}
		}
		for _, a := range data.Announcements {
			if _, err := tx.CreateAnnouncement(a); err != nil {
				return "", err
			}
		}
		return "", nil
	})
}
