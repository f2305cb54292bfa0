package entities

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// Сентинелы для errors.Is, конкретные типы ниже несут детали
	ErrNotFound           = errors.New("resource not found")
	ErrBadRequest         = errors.New("bad request")
	ErrServiceUnavailable = errors.New("service communication error")
)

type NotFoundError struct {
	Resource string
	Field    string
	Value    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %v", e.Resource, e.Field, e.Value)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

func (e *BadRequestError) Unwrap() error { return ErrBadRequest }

// ServiceCommunicationError - зависимость недоступна, деградировала или
// брейкер открыт на неидемпотентном вызове
type ServiceCommunicationError struct {
	Service string
	Message string
}

func (e *ServiceCommunicationError) Error() string {
	return fmt.Sprintf("failed to communicate with %s: %s", e.Service, e.Message)
}

func (e *ServiceCommunicationError) Unwrap() error { return ErrServiceUnavailable }
