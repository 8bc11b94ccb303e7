package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"cascadeconnect/internal/domain/expense"
)

type ExpenseHandler struct {
	expenseRepo expense.Repository
}

func NewExpenseHandler(expenseRepo expense.Repository) *ExpenseHandler {
	return &ExpenseHandler{expenseRepo: expenseRepo}
}

// HandleExpenses routes collection-level requests based on method
func (h *ExpenseHandler) HandleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListExpenses(w, r)
	case http.MethodPost:
		h.handleCreateExpense(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleExpenseByID handles deletes for a specific expense
func (h *ExpenseHandler) HandleExpenseByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodDelete:
		h.handleDeleteExpense(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ExpenseHandler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenseRepo.List(r.Context())
	if err != nil {
		log.Printf("Error listing expenses: %v", err)
		http.Error(w, "Failed to list expenses", http.StatusInternalServerError)
		return
	}

	if expenses == nil {
		expenses = []*expense.Expense{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(expenses)
}

func (h *ExpenseHandler) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var e expense.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		log.Printf("Error decoding create expense request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	} else if err := uuid.Validate(e.ID); err != nil {
		http.Error(w, "Invalid expense ID", http.StatusBadRequest)
		return
	}
	if err := e.Normalize(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := e.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.expenseRepo.Create(r.Context(), &e)
	if err != nil {
		log.Printf("Error creating expense: %v", err)
		http.Error(w, "Failed to create expense", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *ExpenseHandler) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Expense ID is required", http.StatusBadRequest)
		return
	}
	if err := uuid.Validate(id); err != nil {
		http.Error(w, "Invalid expense ID", http.StatusBadRequest)
		return
	}

	// Deleting a missing id still returns 204
	if err := h.expenseRepo.Delete(r.Context(), id); err != nil {
		log.Printf("Error deleting expense %s: %v", id, err)
		http.Error(w, "Failed to delete expense", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
