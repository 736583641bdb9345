package sandbox

var sampleDoctors = []Doctor{
	{FirstName: "Sarah", LastName: "Johnson", Email: "dr.sarah@carepoint.lu", Phone: "+352 621 001 001", Specialty: "Cardiology"},
	{FirstName: "Michael", LastName: "Chen", Email: "dr.michael@carepoint.lu", Phone: "+352 621 001 002", Specialty: "Internal Medicine"},
	{FirstName: "Emily", LastName: "Rodriguez", Email: "dr.emily@carepoint.lu", Phone: "+352 621 001 003", Specialty: "Dermatology"},
	{FirstName: "David", LastName: "Wilson", Email: "dr.david@carepoint.lu", Phone: "+352 621 001 004", Specialty: "Orthopedics"},
	{FirstName: "Lisa", LastName: "Thompson", Email: "dr.lisa@carepoint.lu", Phone: "+352 621 001 005", Specialty: "Pediatrics"},
	{FirstName: "Robert", LastName: "Martinez", Email: "dr.robert@carepoint.lu", Phone: "+352 621 001 006", Specialty: "Neurology"},
	{FirstName: "Amanda", LastName: "Davis", Email: "dr.amanda@carepoint.lu", Phone: "+352 621 001 007", Specialty: "Psychiatry"},
}

var samplePatients = []Patient{
	{FirstName: "John", LastName: "Smith", Email: "john.smith@example.com", Phone: "+352 621 100 001", DateOfBirth: "1985-03-15",
		Address: "123 Main Street, Luxembourg City, Luxembourg", EmergencyContact: "Jane Smith", EmergencyPhone: "+352 621 100 101"},
	{FirstName: "Maria", LastName: "Garcia", Email: "maria.garcia@example.com", Phone: "+352 621 100 002", DateOfBirth: "1990-07-22",
		Address: "456 Oak Avenue, Esch-sur-Alzette, Luxembourg", EmergencyContact: "Carlos Garcia", EmergencyPhone: "+352 621 100 102"},
	{FirstName: "Pierre", LastName: "Dubois", Email: "pierre.dubois@example.com", Phone: "+352 621 100 003", DateOfBirth: "1978-12-03",
		Address: "789 Pine Road, Differdange, Luxembourg", EmergencyContact: "Marie Dubois", EmergencyPhone: "+352 621 100 103"},
	{FirstName: "Anna", LastName: "Müller", Email: "anna.muller@example.com", Phone: "+352 621 100 004", DateOfBirth: "1995-05-10",
		Address: "12 Rue de la Gare, Dudelange, Luxembourg"},
	{FirstName: "Luca", LastName: "Rossi", Email: "luca.rossi@example.com", Phone: "+352 621 100 005", DateOfBirth: "1982-09-28",
		Address: "5 Place d'Armes, Luxembourg City, Luxembourg"},
	{FirstName: "Sophie", LastName: "Weber", Email: "sophie.weber@example.com", Phone: "+352 621 100 006", DateOfBirth: "2001-01-17",
		Address: "33 Avenue de la Liberté, Ettelbruck, Luxembourg"},
}

var (
	firstNames = []string{"Marc", "Julie", "Tom", "Claire", "Yves", "Nina", "Paul", "Lea", "Jean", "Sara"}
	lastNames  = []string{"Schmit", "Muller", "Weber", "Wagner", "Hoffmann", "Klein", "Reuter", "Kremer", "Thill", "Becker"}
	towns      = []string{"Luxembourg City", "Esch-sur-Alzette", "Differdange", "Dudelange", "Ettelbruck", "Diekirch"}
)

var (
	appointmentTypes = []string{
		"General Consultation",
		"Follow-up Visit",
		"Routine Checkup",
		"Urgent Care",
		"Annual Physical",
		"Specialist Consultation",
	}
	appointmentTitles = []string{
		"Regular checkup",
		"Chest pain evaluation",
		"Skin rash examination",
		"Back pain consultation",
		"Headache assessment",
		"Blood pressure check",
		"Medication review",
		"Lab results discussion",
		"Allergy consultation",
		"Vaccination",
	}
	pastStatuses   = []string{"completed", "completed", "completed", "no_show"}
	futureStatuses = []string{"confirmed", "confirmed", "pending"}
)
