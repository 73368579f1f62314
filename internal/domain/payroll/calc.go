package payroll

// Compute derives the pay breakdown for one employee. Advances belonging to
// other employees are ignored. Values are not rounded.
func Compute(employee Employee, advances []Advance) Calculation {
	hourlyRate := employee.BaseSalary / HoursPerMonth
	overtimePayment := employee.OvertimeHours * hourlyRate * OvertimeMultiplier

	dailySalary := employee.BaseSalary / DaysPerMonth
	absenceDeduction := employee.Absences * dailySalary

	var totalAdvances float64
	for _, advance := range advances {
		if advance.EmployeeID == employee.ID {
			totalAdvances += advance.Amount
		}
	}

	gross := employee.BaseSalary + employee.TransportAllowance + employee.FoodAllowance + overtimePayment
	net := gross - totalAdvances - absenceDeduction

	return Calculation{
		EmployeeID:         employee.ID,
		BaseSalary:         employee.BaseSalary,
		TransportAllowance: employee.TransportAllowance,
		FoodAllowance:      employee.FoodAllowance,
		OvertimePayment:    overtimePayment,
		TotalAdvances:      totalAdvances,
		AbsenceDeduction:   absenceDeduction,
		GrossPay:           gross,
		NetPay:             net,
	}
}
