package model

import "time"

// Session is a live sign-in. Tokens reference it by ID and die with it.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionView is what the current-session endpoint reports.
type SessionView struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Receipt describes a purchased subscription.
type Receipt struct {
	SubscriptionID string             `json:"subscriptionId"`
	PlanID         string             `json:"planId"`
	PlanName       string             `json:"planName"`
	Price          int64              `json:"price"`
	Status         SubscriptionStatus `json:"status"`
	PurchaseDate   *time.Time         `json:"purchaseDate,omitempty"`
	StartDate      *time.Time         `json:"startDate,omitempty"`
	EndDate        *time.Time         `json:"endDate,omitempty"`
	UserName       string             `json:"userName"`
	UserEmail      string             `json:"userEmail"`
}
