package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"property_id",
			"guest_id",
			"guest_email",
			"host_id",
			"host_email",
			"check_in",
			"check_out",
			"guests",
			"price",
			"status",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"guest_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"guest_email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"host_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"host_email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"check_in": bson.M{
				"bsonType": "date",
			},

			"check_out": bson.M{
				"bsonType": "date",
			},

			"guests": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  100,
			},

			"price": bson.M{
				"bsonType": "object",
				"required": []string{"price_per_night", "nights", "total"},
				"properties": bson.M{
					"price_per_night": bson.M{"bsonType": "double"},
					"nights":          bson.M{"bsonType": "int", "minimum": 1},
					"cleaning_fee":    bson.M{"bsonType": "double", "minimum": 0},
					"service_fee":     bson.M{"bsonType": "double", "minimum": 0},
					"total":           bson.M{"bsonType": "double"},
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"checked_in",
					"completed",
					"cancelled",
				},
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"unpaid",
					"paid",
				},
			},

			"checkout_session_id": bson.M{
				"bsonType": "string",
			},

			"payment_intent_id": bson.M{
				"bsonType": "string",
			},

			"refund_id": bson.M{
				"bsonType": "string",
			},

			"refund_status": bson.M{
				"bsonType": "string",
			},

			"reviewed": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},

			"paid_at": bson.M{
				"bsonType": "date",
			},

			"refunded_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
