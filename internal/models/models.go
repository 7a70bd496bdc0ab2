package models

import (
	"time"
)

// Order statuses
const (
	OrderPending   = "Pending"
	OrderConfirmed = "Confirmed"
)

// Project request statuses
const (
	RequestRequested = "Requested"
	RequestPending   = "Pending" // payment submitted, awaiting delivery
	RequestPriceSet  = "Price Set"
	RequestCompleted = "Completed"
)

// AdminSender is the chat sender name used for administrator messages.
const AdminSender = "Admin"

type Project struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	ProjectFile      string   `json:"project_file"` // "uploads/<name>", empty until uploaded
	Price            int64    `json:"price"`
	Description      string   `json:"description"`
	ProblemStatement string   `json:"problem_statement"`
	Objectives       string   `json:"objectives"`
	Outcomes         string   `json:"outcomes"`
	Technologies     string   `json:"technologies"`
	Photos           []string `json:"photos,omitempty"`
	Videos           []string `json:"videos,omitempty"`
}

type Order struct {
	ID              int64  `json:"id"`
	ProjectID       int64  `json:"project_id"`
	ProjectTitle    string `json:"project_title"` // For display convenience
	ProjectPrice    int64  `json:"project_price"`
	StudentUsername string `json:"student_username"`
	Status          string `json:"status"`
	TransactionID   string `json:"transaction_id"`
}

type ProjectRequest struct {
	ID               int64    `json:"id"`
	StudentUsername  string   `json:"student_username"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ProblemStatement string   `json:"problem_statement"`
	Objectives       string   `json:"objectives"`
	Outcomes         string   `json:"outcomes"`
	OutputIdea       string   `json:"output_idea"`
	Price            int64    `json:"price"`
	Status           string   `json:"status"`
	TransactionID    string   `json:"transaction_id"`
	FinalFile        string   `json:"final_file"`
	Photos           []string `json:"photos,omitempty"`
	Videos           []string `json:"videos,omitempty"`
}

// CanPay reports whether the student may submit a payment for the request.
func (r *ProjectRequest) CanPay() bool {
	return r.Status == RequestPriceSet || r.Status == RequestPending
}

// Downloadable reports whether the delivered file may be handed out.
func (r *ProjectRequest) Downloadable() bool {
	return r.Status == RequestCompleted && r.FinalFile != ""
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt hash
}

// Message is a chat line attached to a project request or an order.
type Message struct {
	ID        int64     `json:"id"`
	ThreadID  int64     `json:"thread_id"` // request_id or order_id
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
