package services

import (
	"fmt"
	"time"

	"digitizing/internal/authz"
	"digitizing/internal/models"
	"digitizing/internal/repositories"
)

// ContactService handles public contact form submissions and their
// admin-side triage.
type ContactService struct {
	contactRepo repositories.ContactRepository
}

// NewContactService creates a new ContactService.
func NewContactService(contactRepo repositories.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

// Submit stores a website inquiry. Public, no authentication.
func (s *ContactService) Submit(contact *models.ContactForm) (*models.ContactForm, error) {
	contact.Status = models.ContactNew
	if err := s.contactRepo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// ListContacts returns contact forms matching the filters. Admin only.
func (s *ContactService) ListContacts(subject authz.Subject, filters models.ContactFilters) ([]models.ContactForm, error) {
	if !authz.Can(subject, authz.ActionManageContact, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}
	return s.contactRepo.GetAll(filters)
}

// GetContact returns one contact form, marking a new inquiry as read on
// first view.
func (s *ContactService) GetContact(subject authz.Subject, contactID string) (*models.ContactForm, error) {
	if !authz.Can(subject, authz.ActionManageContact, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}

	contact, err := s.contactRepo.GetByID(contactID)
	if err != nil {
		return nil, err
	}

	if contact.Status == models.ContactNew {
		contact.Status = models.ContactRead
		if err := s.contactRepo.Update(contact); err != nil {
			return nil, err
		}
	}
	return contact, nil
}

// UpdateStatus moves a contact form to a new triage status. Marking a
// contact replied stamps who replied and when.
func (s *ContactService) UpdateStatus(subject authz.Subject, contactID string, status models.ContactStatus, notes string) (*models.ContactForm, error) {
	if !authz.Can(subject, authz.ActionManageContact, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown contact status %q: %w", status, models.ErrValidation)
	}

	contact, err := s.contactRepo.GetByID(contactID)
	if err != nil {
		return nil, err
	}

	contact.Status = status
	if notes != "" {
		contact.Notes = notes
	}
	if status == models.ContactReplied {
		now := time.Now()
		contact.RepliedAt = &now
		contact.RepliedBy = subject.AdminID
	}

	if err := s.contactRepo.Update(contact); err != nil {
		return nil, err
	}
	return contact, nil
}
