package users

import "time"

// User representa un dueño de mascotas. La relación user -> pets
// se resuelve vía pets.Filter{OwnerID}, no se duplica acá.
type User struct {
	ID       string
	Username string

	CreatedAt time.Time
}
