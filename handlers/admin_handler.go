package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.reports.GetAdminDashboardData(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(data)
}

func (h *Handler) GetReferralReport(c *fiber.Ctx) error {
	report, err := h.reports.GetReferralReport(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(report)
}

func (h *Handler) GetRepeatLessonsReport(c *fiber.Ctx) error {
	report, err := h.reports.GetRepeatLessonsReport(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"repeat_students": len(report), "students": report})
}

// GetQuarterlyRevenue defaults to the current year when ?year is absent.
func (h *Handler) GetQuarterlyRevenue(c *fiber.Ctx) error {
	year := c.QueryInt("year", time.Now().UTC().Year())
	if year < 2000 || year > 9999 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid year"})
	}
	quarters, err := h.reports.RevenueByQuarter(c.UserContext(), year)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"year": year, "revenue": quarters, "total": quarters.Total()})
}

func (h *Handler) GetInstrumentReport(c *fiber.Ctx) error {
	popular, err := h.reports.PopularInstruments(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	revenue, err := h.reports.RevenueByInstrument(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"popular_instruments": popular, "revenue_by_instrument": revenue})
}

func (h *Handler) GetStudentRevenueReport(c *fiber.Ctx) error {
	report, err := h.reports.RevenueByStudent(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(report)
}

func (h *Handler) GetPlatformRevenue(c *fiber.Ctx) error {
	revenue, err := h.payments.GetPlatformRevenue(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(revenue)
}
