package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime"
	"mime/multipart"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type AWSService struct {
	s3Client *s3.Client
	bucket   string
}

func NewAWSService() (*AWSService, error) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	region := os.Getenv("AWS_REGION")
	bucket := os.Getenv("S3_BUCKET_NAME")

	if accessKey == "" || secretKey == "" || region == "" || bucket == "" {
		return nil, fmt.Errorf("variables d'environnement AWS manquantes")
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("erreur de configuration AWS: %v", err)
	}

	s3Client := s3.NewFromConfig(cfg)

	return &AWSService{
		s3Client: s3Client,
		bucket:   bucket,
	}, nil
}

// UploadAdImage téléverse la photo d'une annonce vers S3 et retourne son URL publique.
// Les photos sont stockées dans le dossier 'ads/'.
func (a *AWSService) UploadAdImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(file); err != nil {
		log.Printf("Erreur lors de la lecture du fichier %s: %v", header.Filename, err)
		return "", fmt.Errorf("impossible de lire le fichier")
	}
	imageData := buf.Bytes()

	// Détecter le type MIME via les magic numbers, pas l'extension déclarée
	contentType := detectImageContentType(imageData)
	if contentType == "" {
		log.Printf("Type d'image non supporté pour le fichier %s", header.Filename)
		return "", fmt.Errorf("type d'image non supporté (JPEG, PNG, GIF ou WebP attendu)")
	}

	fileName := fmt.Sprintf("ads/%s%s", uuid.New().String(), getFileExtension(contentType))

	imageUrl, err := a.uploadToS3(fileName, imageData, contentType)
	if err != nil {
		log.Printf("Erreur lors de l'upload de l'image vers S3: %v", err)
		return "", fmt.Errorf("échec de l'upload vers S3")
	}

	log.Printf("Image d'annonce uploadée avec succès: %s", imageUrl)
	return imageUrl, nil
}

func (a *AWSService) uploadToS3(fileName string, data []byte, contentType string) (string, error) {
	_, err := a.s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})

	if err != nil {
		return "", fmt.Errorf("erreur lors de l'upload S3: %v", err)
	}

	// Construire l'URL publique
	imageUrl := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		a.bucket, os.Getenv("AWS_REGION"), fileName)

	return imageUrl, nil
}

func detectImageContentType(data []byte) string {
	// Vérifier les signatures de fichiers (magic numbers)
	if len(data) < 4 {
		return ""
	}

	// JPEG
	if bytes.Equal(data[:2], []byte{0xFF, 0xD8}) {
		return "image/jpeg"
	}

	// PNG
	if bytes.Equal(data[:4], []byte{0x89, 0x50, 0x4E, 0x47}) {
		return "image/png"
	}

	// GIF
	if bytes.Equal(data[:3], []byte{0x47, 0x49, 0x46}) {
		return "image/gif"
	}

	// WebP
	if len(data) >= 12 && bytes.Equal(data[:4], []byte{0x52, 0x49, 0x46, 0x46}) &&
		bytes.Equal(data[8:12], []byte{0x57, 0x45, 0x42, 0x50}) {
		return "image/webp"
	}

	return ""
}

// DeleteImage supprime une image de S3 en utilisant son URL publique.
func (a *AWSService) DeleteImage(imageUrl string) error {
	region := os.Getenv("AWS_REGION")

	key := extractKeyFromUrl(imageUrl, a.bucket, region)
	if key == "" {
		return fmt.Errorf("impossible d'extraire la clé depuis l'URL: %s", imageUrl)
	}

	_, err := a.s3Client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("erreur lors de la suppression S3: %v", err)
	}

	log.Printf("Image supprimée avec succès: %s", imageUrl)
	return nil
}

// extractKeyFromUrl extrait la clé (nom du fichier) depuis une URL S3
func extractKeyFromUrl(imageUrl, bucketName, region string) string {
	// Format attendu: https://bucketname.s3.region.amazonaws.com/path/to/file.jpg
	expectedPrefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", bucketName, region)

	if strings.HasPrefix(imageUrl, expectedPrefix) {
		return strings.TrimPrefix(imageUrl, expectedPrefix)
	}

	// Format alternatif: https://s3.region.amazonaws.com/bucketname/path/to/file.jpg
	alternativePrefix := fmt.Sprintf("https://s3.%s.amazonaws.com/%s/", region, bucketName)
	if strings.HasPrefix(imageUrl, alternativePrefix) {
		return strings.TrimPrefix(imageUrl, alternativePrefix)
	}

	log.Printf("Format d'URL non reconnu: %s", imageUrl)
	return ""
}

func getFileExtension(contentType string) string {
	ext, err := mime.ExtensionsByType(contentType)
	if err != nil || len(ext) == 0 {
		switch contentType {
		case "image/jpeg":
			return ".jpg"
		case "image/png":
			return ".png"
		case "image/gif":
			return ".gif"
		case "image/webp":
			return ".webp"
		default:
			return ".jpg"
		}
	}
	return ext[0]
}
