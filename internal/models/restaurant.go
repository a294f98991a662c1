package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PlanBasic      = "basic"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

const (
	BillingMonthly = "monthly"
	BillingAnnual  = "annual"
)

// Subscription states mirror the billing provider's vocabulary.
const (
	SubscriptionPending  = "pending"
	SubscriptionTrialing = "trialing"
	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

type Restaurant struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantName     string             `bson:"restaurantName" json:"restaurantName"`
	Location           string             `bson:"location" json:"location"`
	HeadChefID         primitive.ObjectID `bson:"headChefId" json:"headChefId"`
	PlanType           string             `bson:"planType" json:"planType"`
	BillingCycle       string             `bson:"billingCycle" json:"billingCycle"`
	SubscriptionStatus string             `bson:"subscriptionStatus" json:"subscriptionStatus"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func IsValidPlan(plan string) bool {
	return plan == PlanBasic || plan == PlanPro || plan == PlanEnterprise
}

func IsValidBillingCycle(cycle string) bool {
	return cycle == BillingMonthly || cycle == BillingAnnual
}
