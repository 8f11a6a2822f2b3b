package postgresadapter

import (
	"time"

	"cardvault/contexts/account-management/account-service/domain/entities"
)

type userModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;size:50;not null"`
	Surname   string    `gorm:"column:surname;size:50;not null"`
	BirthDate time.Time `gorm:"column:birth_date;type:date;not null"`
	Email     string    `gorm:"column:email;size:100;not null;uniqueIndex:users_email_key"`
	Active    bool      `gorm:"column:active;not null"`
	Version   int64     `gorm:"column:version;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		ID:        m.ID,
		Name:      m.Name,
		Surname:   m.Surname,
		BirthDate: m.BirthDate.UTC(),
		Email:     m.Email,
		Active:    m.Active,
		Version:   m.Version,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func userModelFromEntity(user entities.User) userModel {
	return userModel{
		ID:        user.ID,
		Name:      user.Name,
		Surname:   user.Surname,
		BirthDate: user.BirthDate.UTC(),
		Email:     user.Email,
		Active:    user.Active,
		Version:   user.Version,
		CreatedAt: user.CreatedAt.UTC(),
		UpdatedAt: user.UpdatedAt.UTC(),
	}
}

type cardModel struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID         int64     `gorm:"column:user_id;not null;index:payment_cards_user_id_idx"`
	Number         string    `gorm:"column:number;size:19;not null;uniqueIndex:payment_cards_number_key"`
	Holder         string    `gorm:"column:holder;size:100;not null"`
	ExpirationDate time.Time `gorm:"column:expiration_date;type:date;not null"`
	Active         bool      `gorm:"column:active;not null"`
	Version        int64     `gorm:"column:version;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null"`

	// Owner only declares the user_id foreign key; it is never loaded or saved.
	Owner *userModel `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (cardModel) TableName() string {
	return "payment_cards"
}

func (m cardModel) toEntity() entities.PaymentCard {
	return entities.PaymentCard{
		ID:             m.ID,
		OwnerID:        m.UserID,
		Number:         m.Number,
		Holder:         m.Holder,
		ExpirationDate: m.ExpirationDate.UTC(),
		Active:         m.Active,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func cardModelFromEntity(card entities.PaymentCard) cardModel {
	return cardModel{
		ID:             card.ID,
		UserID:         card.OwnerID,
		Number:         card.Number,
		Holder:         card.Holder,
		ExpirationDate: card.ExpirationDate.UTC(),
		Active:         card.Active,
		Version:        card.Version,
		CreatedAt:      card.CreatedAt.UTC(),
		UpdatedAt:      card.UpdatedAt.UTC(),
	}
}
