package main

import (
	"github.com/assetflow/assetflow_backend/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerCustomValidators adds domain validations usable in binding tags.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("statusname", func(fl validator.FieldLevel) bool {
		_, err := models.ParseStatusName(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("userrole", func(fl validator.FieldLevel) bool {
		_, err := models.ParseUserRole(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("costresponsibility", func(fl validator.FieldLevel) bool {
		_, err := models.ParseCostResponsibility(fl.Field().String())
		return err == nil
	})
}
